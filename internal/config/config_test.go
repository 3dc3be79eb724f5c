package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "EASYTECH MASTER STOCK", cfg.Store.Brand)
	assert.Equal(t, "Main Street Store", cfg.Store.Location)
	assert.Equal(t, "Return Policy: Items can be returned within 30 days with receipt.", cfg.Store.ReturnPolicy)
	assert.Equal(t, 12*time.Hour, cfg.JWT.ExpiryHours)
	assert.Equal(t, 32, cfg.Printer.CharWidth)
	assert.Equal(t, 3*time.Second, cfg.Redis.ReadTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STORE_LOCATION", "Airport Kiosk")
	t.Setenv("PRINTER_TYPE", "network")

	cfg := Load()

	assert.Equal(t, "Airport Kiosk", cfg.Store.Location)
	assert.Equal(t, "network", cfg.Printer.Type)
}

func TestTimeLocationFallsBackToUTC(t *testing.T) {
	sc := StoreConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, sc.TimeLocation())

	sc.Timezone = "UTC"
	assert.Equal(t, "UTC", sc.TimeLocation().String())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", Name: "pos", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=pos port=5432 sslmode=disable TimeZone=UTC", db.DSN())
}

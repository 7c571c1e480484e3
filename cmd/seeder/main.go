package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/squid-app/squid-api/internal/config"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Info("Connected to database")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	devices := repository.NewDeviceRepository(db)

	log.Info("Seeding 3 users...")

	for i := 1; i <= 3; i++ {
		identity := model.NewGoogleIdentity(
			fmt.Sprintf("10000000000000000000%d", i),
			fmt.Sprintf("Demo User %d", i),
			fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=squid%d", i),
			fmt.Sprintf("user%d@squid.local", i),
			"",
		)

		if _, err := users.AddUser(ctx, identity); err != nil {
			log.WithError(err).Errorf("Failed to seed user %s", identity.ID)
			continue
		}

		for _, input := range demoDevices(i) {
			device, added, err := devices.AddDevice(ctx, identity.ID, input)
			if err != nil {
				log.WithError(err).Errorf("Failed to seed device %q", input.Name)
				continue
			}
			log.WithFields(log.Fields{
				"user_id":   identity.ID,
				"device_id": device.ID,
				"added":     added,
			}).Info("Seeded device")
		}
	}

	log.Info("Seeding completed")
}

// demoDevices returns one phone and one browser per user. Push tokens are fake,
// so commands sent to them fail at FCM.
func demoDevices(n int) []model.NewDevice {
	return []model.NewDevice{
		{Name: fmt.Sprintf("Pixel %d", n), GCMToken: fmt.Sprintf("demo-android-token-%d", n), DeviceType: model.DeviceTypeAndroid},
		{Name: fmt.Sprintf("Chrome %d", n), GCMToken: fmt.Sprintf("demo-chrome-token-%d", n), DeviceType: model.DeviceTypeChrome},
	}
}

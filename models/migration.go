package models

import (
	"log"

	"github.com/dealdesk/deals_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Employee{}, &MerchantAccount{}, &Deal{},
		&SyncRun{}, &SyncError{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"palletrack/config"
	"palletrack/database"
	"palletrack/models"
)

// Seeds the QR code pool from a CSV export of pre-printed labels.
// Expected columns: code. Usage: go run scripts/provisionQrPool.go labels.csv
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: provisionQrPool <labels.csv>")
	}

	config.LoadConfig()
	database.ConnectDb()

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV file: %v", err)
	}

	inserted := 0
	skipped := 0
	for i, record := range records {
		if i == 0 { // skip header row
			continue
		}
		if len(record) < 1 || record[0] == "" {
			continue
		}
		code := record[0]

		var count int64
		database.Database.Db.Model(&models.QrCode{}).Where("code = ?", code).Count(&count)
		if count > 0 {
			skipped++
			continue
		}

		qr := models.QrCode{
			Code:   code,
			Status: models.QrFree,
		}
		if err := database.Database.Db.Create(&qr).Error; err != nil {
			log.Printf("Failed to insert code %s: %v", code, err)
			continue
		}
		inserted++
	}

	fmt.Printf("Done. Inserted %d codes, skipped %d duplicates.\n", inserted, skipped)
}

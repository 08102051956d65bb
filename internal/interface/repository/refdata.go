package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MigrateReferenceData creates the IATA reference tables.
func MigrateReferenceData(db *gorm.DB) error {
	return db.AutoMigrate(&Airlines{}, &Airports{})
}

// SeedReferenceData loads the working set of carriers and airports the
// agency books daily. Inserts are keyed on code and skip existing rows,
// so reseeding on every start is safe and operators can extend the
// tables without fighting the seed.
func SeedReferenceData(db *gorm.DB) error {
	airlines := []Airlines{
		{Code: "UR", Name: "Uganda Airlines"},
		{Code: "KQ", Name: "Kenya Airways"},
		{Code: "ET", Name: "Ethiopian Airlines"},
		{Code: "WB", Name: "RwandAir"},
		{Code: "PW", Name: "Precision Air"},
		{Code: "QR", Name: "Qatar Airways"},
		{Code: "EK", Name: "Emirates"},
		{Code: "TK", Name: "Turkish Airlines"},
		{Code: "MS", Name: "EgyptAir"},
		{Code: "BA", Name: "British Airways"},
		{Code: "KL", Name: "KLM Royal Dutch Airlines"},
		{Code: "AF", Name: "Air France"},
		{Code: "LH", Name: "Lufthansa"},
		{Code: "SA", Name: "South African Airways"},
		{Code: "FZ", Name: "flydubai"},
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&airlines).Error; err != nil {
		return err
	}

	airports := []Airports{
		{AirportCode: "JUB", AirportName: "Juba International Airport", CityName: "Juba", CountryName: "South Sudan", TzName: "Africa/Juba"},
		{AirportCode: "EBB", AirportName: "Entebbe International Airport", CityName: "Entebbe", CountryName: "Uganda", TzName: "Africa/Kampala"},
		{AirportCode: "NBO", AirportName: "Jomo Kenyatta International Airport", CityName: "Nairobi", CountryName: "Kenya", TzName: "Africa/Nairobi"},
		{AirportCode: "MBA", AirportName: "Moi International Airport", CityName: "Mombasa", CountryName: "Kenya", TzName: "Africa/Nairobi"},
		{AirportCode: "ADD", AirportName: "Addis Ababa Bole International Airport", CityName: "Addis Ababa", CountryName: "Ethiopia", TzName: "Africa/Addis_Ababa"},
		{AirportCode: "KGL", AirportName: "Kigali International Airport", CityName: "Kigali", CountryName: "Rwanda", TzName: "Africa/Kigali"},
		{AirportCode: "DAR", AirportName: "Julius Nyerere International Airport", CityName: "Dar es Salaam", CountryName: "Tanzania", TzName: "Africa/Dar_es_Salaam"},
		{AirportCode: "JRO", AirportName: "Kilimanjaro International Airport", CityName: "Kilimanjaro", CountryName: "Tanzania", TzName: "Africa/Dar_es_Salaam"},
		{AirportCode: "CAI", AirportName: "Cairo International Airport", CityName: "Cairo", CountryName: "Egypt", TzName: "Africa/Cairo"},
		{AirportCode: "JNB", AirportName: "O. R. Tambo International Airport", CityName: "Johannesburg", CountryName: "South Africa", TzName: "Africa/Johannesburg"},
		{AirportCode: "DXB", AirportName: "Dubai International Airport", CityName: "Dubai", CountryName: "United Arab Emirates", TzName: "Asia/Dubai"},
		{AirportCode: "DOH", AirportName: "Hamad International Airport", CityName: "Doha", CountryName: "Qatar", TzName: "Asia/Qatar"},
		{AirportCode: "IST", AirportName: "Istanbul Airport", CityName: "Istanbul", CountryName: "Turkey", TzName: "Europe/Istanbul"},
		{AirportCode: "LHR", AirportName: "Heathrow Airport", CityName: "London", CountryName: "United Kingdom", TzName: "Europe/London"},
		{AirportCode: "CDG", AirportName: "Charles de Gaulle Airport", CityName: "Paris", CountryName: "France", TzName: "Europe/Paris"},
		{AirportCode: "AMS", AirportName: "Amsterdam Airport Schiphol", CityName: "Amsterdam", CountryName: "Netherlands", TzName: "Europe/Amsterdam"},
		{AirportCode: "FRA", AirportName: "Frankfurt Airport", CityName: "Frankfurt", CountryName: "Germany", TzName: "Europe/Berlin"},
		{AirportCode: "JFK", AirportName: "John F. Kennedy International Airport", CityName: "New York", CountryName: "United States", TzName: "America/New_York"},
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "airport_code"}},
		DoNothing: true,
	}).Create(&airports).Error
}

package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	// DSN must include multiStatements=true for the batched DDL below.
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS tickets (
	  id CHAR(36) NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  description TEXT NULL,
	  location VARCHAR(255) NULL,
	  duration VARCHAR(64) NULL,
	  category VARCHAR(64) NULL,
	  price BIGINT NOT NULL,
	  image_url VARCHAR(512) NULL,
	  active TINYINT(1) NOT NULL DEFAULT 1,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS accommodations (
	  id CHAR(36) NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  description TEXT NULL,
	  location VARCHAR(255) NULL,
	  price_per_night BIGINT NOT NULL,
	  max_guests INT NOT NULL DEFAULT 2,
	  image_url VARCHAR(512) NULL,
	  active TINYINT(1) NOT NULL DEFAULT 1,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS payments (
	  id CHAR(36) NOT NULL,
	  external_id VARCHAR(64) NOT NULL,
	  amount BIGINT NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'IDR',
	  status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
	  invoice_id VARCHAR(128) NULL,
	  invoice_url VARCHAR(512) NULL,
	  payment_method VARCHAR(64) NULL,
	  payment_channel VARCHAR(64) NULL,
	  paid_at DATETIME(3) NULL,
	  failure_code VARCHAR(64) NULL,
	  failure_message VARCHAR(255) NULL,
	  raw_payload JSON NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_payments_external_id (external_id),
	  KEY ix_payments_status (status),
	  KEY ix_payments_invoice_id (invoice_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS callback_events (
	  id CHAR(36) NOT NULL,
	  external_id VARCHAR(64) NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  invoice_id VARCHAR(128) NULL,
	  payload JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  KEY ix_callback_events_external_id (external_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS ticket_bookings (
	  id CHAR(36) NOT NULL,
	  ticket_id CHAR(36) NOT NULL,
	  payment_id CHAR(36) NOT NULL,
	  customer_name VARCHAR(255) NOT NULL,
	  customer_email VARCHAR(255) NOT NULL,
	  customer_phone VARCHAR(32) NULL,
	  quantity INT NOT NULL,
	  visit_date DATE NOT NULL,
	  total_amount BIGINT NOT NULL,
	  status VARCHAR(32) NOT NULL DEFAULT 'PENDING',
	  qr_payload VARCHAR(128) NULL,
	  friendly_code VARCHAR(16) NULL,
	  verified_at DATETIME(3) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_ticket_bookings_payment_id (payment_id),
	  UNIQUE KEY ux_ticket_bookings_friendly_code (friendly_code),
	  KEY ix_ticket_bookings_ticket_id (ticket_id),
	  KEY ix_ticket_bookings_status (status),
	  KEY ix_ticket_bookings_qr_payload (qr_payload),
	  CONSTRAINT fk_ticket_bookings_ticket FOREIGN KEY (ticket_id) REFERENCES tickets(id) ON DELETE RESTRICT,
	  CONSTRAINT fk_ticket_bookings_payment FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS accommodation_bookings (
	  id CHAR(36) NOT NULL,
	  accommodation_id CHAR(36) NOT NULL,
	  payment_id CHAR(36) NOT NULL,
	  customer_name VARCHAR(255) NOT NULL,
	  customer_email VARCHAR(255) NOT NULL,
	  customer_phone VARCHAR(32) NULL,
	  check_in DATE NOT NULL,
	  check_out DATE NOT NULL,
	  guests INT NOT NULL,
	  total_amount BIGINT NOT NULL,
	  status VARCHAR(32) NOT NULL DEFAULT 'PENDING',
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_accommodation_bookings_payment_id (payment_id),
	  KEY ix_accommodation_bookings_accommodation_id (accommodation_id),
	  KEY ix_accommodation_bookings_status (status),
	  CONSTRAINT fk_accommodation_bookings_accommodation FOREIGN KEY (accommodation_id) REFERENCES accommodations(id) ON DELETE RESTRICT,
	  CONSTRAINT fk_accommodation_bookings_payment FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("✓ tickets table created successfully")
	log.Println("✓ accommodations table created successfully")
	log.Println("✓ payments table created successfully")
	log.Println("✓ callback_events table created successfully")
	log.Println("✓ ticket_bookings table created successfully")
	log.Println("✓ accommodation_bookings table created successfully")
}

package bookings

import "time"

// Booking statuses. Payments use a different terminal vocabulary: a FAILED
// payment maps to a CANCELLED booking, never to a "FAILED" one.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Ticket is a tourism ticket product (waterfall entry, day pass, ...).
type Ticket struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Location    string    `gorm:"type:varchar(255)"`
	Duration    string    `gorm:"type:varchar(64)"`
	Category    string    `gorm:"type:varchar(64)"`
	Price       int64     `gorm:"not null"` // IDR, no minor unit
	ImageURL    string    `gorm:"type:varchar(512)"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt   time.Time `gorm:"type:datetime(3);not null"`
}

func (Ticket) TableName() string { return "tickets" }

// Accommodation is a lodge/cabin unit booked per night.
type Accommodation struct {
	ID            string    `gorm:"type:char(36);primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Description   string    `gorm:"type:text"`
	Location      string    `gorm:"type:varchar(255)"`
	PricePerNight int64     `gorm:"not null"`
	MaxGuests     int       `gorm:"not null;default:2"`
	ImageURL      string    `gorm:"type:varchar(512)"`
	Active        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt     time.Time `gorm:"type:datetime(3);not null"`
}

func (Accommodation) TableName() string { return "accommodations" }

// TicketBooking references exactly one Payment; a payment belongs to either a
// ticket booking or an accommodation booking, never both.
type TicketBooking struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	TicketID  string `gorm:"type:char(36);not null;index:ix_ticket_bookings_ticket_id"`
	PaymentID string `gorm:"type:char(36);not null;uniqueIndex:ux_ticket_bookings_payment_id"`

	CustomerName  string `gorm:"type:varchar(255);not null"`
	CustomerEmail string `gorm:"type:varchar(255);not null"`
	CustomerPhone string `gorm:"type:varchar(32)"`

	Quantity    int       `gorm:"not null"`
	VisitDate   time.Time `gorm:"type:date;not null"`
	TotalAmount int64     `gorm:"not null"`
	Status      string    `gorm:"type:varchar(32);not null;index:ix_ticket_bookings_status"`

	// QRPayload is the opaque hash encoded into the e-voucher QR; FriendlyCode is
	// the human-readable fallback shown at the gate.
	QRPayload    string     `gorm:"type:varchar(128);index:ix_ticket_bookings_qr_payload"`
	FriendlyCode string     `gorm:"type:varchar(16);uniqueIndex:ux_ticket_bookings_friendly_code"`
	VerifiedAt   *time.Time `gorm:"type:datetime(3)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (TicketBooking) TableName() string { return "ticket_bookings" }

type AccommodationBooking struct {
	ID              string `gorm:"type:char(36);primaryKey"`
	AccommodationID string `gorm:"type:char(36);not null;index:ix_accommodation_bookings_accommodation_id"`
	PaymentID       string `gorm:"type:char(36);not null;uniqueIndex:ux_accommodation_bookings_payment_id"`

	CustomerName  string `gorm:"type:varchar(255);not null"`
	CustomerEmail string `gorm:"type:varchar(255);not null"`
	CustomerPhone string `gorm:"type:varchar(32)"`

	CheckIn     time.Time `gorm:"type:date;not null"`
	CheckOut    time.Time `gorm:"type:date;not null"`
	Guests      int       `gorm:"not null"`
	TotalAmount int64     `gorm:"not null"`
	Status      string    `gorm:"type:varchar(32);not null;index:ix_accommodation_bookings_status"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (AccommodationBooking) TableName() string { return "accommodation_bookings" }

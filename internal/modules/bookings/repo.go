package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("booking not found")

// IsDuplicateKey reports a MySQL unique-constraint violation (error 1062),
// e.g. a friendly-code collision on insert.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindTicket(ctx context.Context, id string) (Ticket, error) {
	var t Ticket
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND active = 1", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, err
	}
	return t, nil
}

func (r *Repo) FindAccommodation(ctx context.Context, id string) (Accommodation, error) {
	var a Accommodation
	if err := r.db.WithContext(ctx).First(&a, "id = ? AND active = 1", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Accommodation{}, ErrNotFound
		}
		return Accommodation{}, err
	}
	return a, nil
}

func (r *Repo) CreateTicketBooking(ctx context.Context, b *TicketBooking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) CreateAccommodationBooking(ctx context.Context, b *AccommodationBooking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindTicketBooking(ctx context.Context, id string) (TicketBooking, error) {
	var b TicketBooking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TicketBooking{}, ErrNotFound
		}
		return TicketBooking{}, err
	}
	return b, nil
}

// FindTicketBookingByCode looks a paid e-voucher up by its friendly code or QR
// payload hash; the gate scanner sends whichever it has.
func (r *Repo) FindTicketBookingByCode(ctx context.Context, code string) (TicketBooking, error) {
	var b TicketBooking
	err := r.db.WithContext(ctx).
		First(&b, "friendly_code = ? OR qr_payload = ?", code, code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TicketBooking{}, ErrNotFound
		}
		return TicketBooking{}, err
	}
	return b, nil
}

// MarkTicketVerified stamps the first gate scan; later scans keep the original
// timestamp so re-use is detectable.
func (r *Repo) MarkTicketVerified(ctx context.Context, id string) (already bool, err error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&TicketBooking{}).
		Where("id = ? AND verified_at IS NULL", id).
		Updates(map[string]any{"verified_at": &now, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

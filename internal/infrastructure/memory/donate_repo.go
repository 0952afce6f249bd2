package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type DonateRepository struct {
	s *Store
}

func (r *DonateRepository) CreateDonate(ctx context.Context, donate *domain.Donate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.donates[donate.ID]; ok {
		return fmt.Errorf("donate %s already exists", donate.ID)
	}
	if donate.CreatedAt.IsZero() {
		donate.CreatedAt = time.Now()
	}
	for _, tx := range donate.Transactions {
		tx.DonateID = donate.ID
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = donate.CreatedAt
		}
	}
	r.s.donates[donate.ID] = donateRow{seq: r.s.nextSeq(), donate: cloneDonate(donate)}
	return nil
}

func (r *DonateRepository) GetDonateByID(ctx context.Context, donateID string) (*domain.Donate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.donates[donateID]
	if !ok {
		return nil, domain.ErrDonateNotFound
	}
	return cloneDonate(row.donate), nil
}

func (r *DonateRepository) GetDonateByIDForUpdate(ctx context.Context, donateID string) (*domain.Donate, error) {
	return r.GetDonateByID(ctx, donateID)
}

func (r *DonateRepository) findTx(transactionID string) (*domain.DonateTransaction, *domain.Donate) {
	for _, row := range r.s.donates {
		for _, tx := range row.donate.Transactions {
			if tx.ID == transactionID {
				return tx, row.donate
			}
		}
	}
	return nil, nil
}

func (r *DonateRepository) GetTransactionByID(ctx context.Context, transactionID string) (*domain.DonateTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, _ := r.findTx(transactionID)
	if tx == nil {
		return nil, domain.ErrTransactionNotFound
	}
	c := *tx
	return &c, nil
}

func (r *DonateRepository) ConfirmTransaction(ctx context.Context, transactionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, _ := r.findTx(transactionID)
	if tx == nil {
		return domain.ErrTransactionNotFound
	}
	tx.IsConfirmed = true
	return nil
}

func (r *DonateRepository) SetDonateConfirmed(ctx context.Context, donateID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.donates[donateID]
	if !ok {
		return domain.ErrDonateNotFound
	}
	row.donate.IsConfirmed = true
	return nil
}

func (r *DonateRepository) CountPendingDonates(ctx context.Context, matrixID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, row := range r.s.donates {
		if row.donate.MatrixID == matrixID && row.donate.Pending() {
			n++
		}
	}
	return n, nil
}

func (r *DonateRepository) CountPendingByMatrixIDs(ctx context.Context, matrixIDs []string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := make(map[string]struct{}, len(matrixIDs))
	for _, id := range matrixIDs {
		want[id] = struct{}{}
	}
	counts := make(map[string]int)
	for _, row := range r.s.donates {
		if _, ok := want[row.donate.MatrixID]; ok && row.donate.Pending() {
			counts[row.donate.MatrixID]++
		}
	}
	return counts, nil
}

func (r *DonateRepository) collect(keep func(*domain.Donate) bool) []*domain.Donate {
	var rows []donateRow
	for _, row := range r.s.donates {
		if keep(row.donate) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*domain.Donate, len(rows))
	for i, row := range rows {
		out[i] = cloneDonate(row.donate)
	}
	return out
}

func (r *DonateRepository) GetPendingDonatesBySender(ctx context.Context, senderID int64, buildType domain.BuildType) ([]*domain.Donate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(d *domain.Donate) bool {
		return d.SenderID == senderID && d.BuildType == buildType && d.Pending()
	}), nil
}

func (r *DonateRepository) CancelDonate(ctx context.Context, donateID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.donates[donateID]
	if !ok {
		return domain.ErrDonateNotFound
	}
	row.donate.IsCanceled = true
	for _, tx := range row.donate.Transactions {
		tx.IsCanceled = true
	}
	return nil
}

func (r *DonateRepository) DeleteDonate(ctx context.Context, donateID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.donates[donateID]; !ok {
		return domain.ErrDonateNotFound
	}
	delete(r.s.donates, donateID)
	return nil
}

func (r *DonateRepository) FindExpiredDonates(ctx context.Context, createdBefore time.Time) ([]*domain.Donate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(d *domain.Donate) bool {
		return d.Pending() && d.CreatedAt.Before(createdBefore)
	}), nil
}

func (r *DonateRepository) GetDonatesBySender(ctx context.Context, senderID int64) ([]*domain.Donate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(d *domain.Donate) bool { return d.SenderID == senderID }), nil
}

func (r *DonateRepository) GetTransactionsByRecipient(ctx context.Context, recipientID int64) ([]*domain.DonateTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.DonateTransaction
	for _, d := range r.collect(func(*domain.Donate) bool { return true }) {
		for _, tx := range d.Transactions {
			if tx.RecipientID == recipientID {
				out = append(out, tx)
			}
		}
	}
	return out, nil
}

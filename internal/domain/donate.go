package domain

import "time"

type Donate struct {
	ID           string
	SenderID     int64
	MatrixID     string
	BuildType    BuildType
	Amount       float64
	IsConfirmed  bool
	IsCanceled   bool
	CreatedAt    time.Time
	Transactions []*DonateTransaction
}

type DonateTransaction struct {
	ID          string
	DonateID    string
	RecipientID int64
	Amount      float64
	IsConfirmed bool
	IsCanceled  bool
	CreatedAt   time.Time
}

func (d *Donate) Pending() bool {
	return !d.IsConfirmed && !d.IsCanceled
}

// AllLegsConfirmed is the AND over non-canceled legs. A donate without legs is never confirmed.
func (d *Donate) AllLegsConfirmed() bool {
	n := 0
	for _, tx := range d.Transactions {
		if tx.IsCanceled {
			continue
		}
		if !tx.IsConfirmed {
			return false
		}
		n++
	}
	return n > 0
}

func (d *Donate) Recipients() []int64 {
	ids := make([]int64, 0, len(d.Transactions))
	for _, tx := range d.Transactions {
		ids = append(ids, tx.RecipientID)
	}
	return ids
}

// Credit - одна доля суммы подарка
type Credit struct {
	RecipientID int64
	Amount      float64
}

type CreditMap []Credit

// Add merges repeated recipients into a single leg.
func (c CreditMap) Add(recipientID int64, amount float64) CreditMap {
	for i := range c {
		if c[i].RecipientID == recipientID {
			c[i].Amount += amount
			return c
		}
	}
	return append(c, Credit{RecipientID: recipientID, Amount: amount})
}

func (c CreditMap) Total() float64 {
	var total float64
	for _, cr := range c {
		total += cr.Amount
	}
	return total
}

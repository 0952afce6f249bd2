package mappers

import (
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
)

func ToDomainDonate(model *models.DonateModel) *domain.Donate {
	d := &domain.Donate{
		ID:          model.ID,
		SenderID:    model.SenderID,
		MatrixID:    model.MatrixID,
		BuildType:   domain.BuildType(model.BuildType),
		Amount:      model.Amount,
		IsConfirmed: model.IsConfirmed,
		IsCanceled:  model.IsCanceled,
		CreatedAt:   model.CreatedAt,
	}
	for i := range model.Transactions {
		d.Transactions = append(d.Transactions, ToDomainDonateTransaction(&model.Transactions[i]))
	}
	return d
}

func ToGORMDonate(donate *domain.Donate) *models.DonateModel {
	model := &models.DonateModel{
		ID:          donate.ID,
		SenderID:    donate.SenderID,
		MatrixID:    donate.MatrixID,
		BuildType:   string(donate.BuildType),
		Amount:      donate.Amount,
		IsConfirmed: donate.IsConfirmed,
		IsCanceled:  donate.IsCanceled,
		CreatedAt:   donate.CreatedAt,
	}
	for _, tx := range donate.Transactions {
		model.Transactions = append(model.Transactions, *ToGORMDonateTransaction(tx))
	}
	return model
}

func ToDomainDonateTransaction(model *models.DonateTransactionModel) *domain.DonateTransaction {
	return &domain.DonateTransaction{
		ID:          model.ID,
		DonateID:    model.DonateID,
		RecipientID: model.RecipientID,
		Amount:      model.Amount,
		IsConfirmed: model.IsConfirmed,
		IsCanceled:  model.IsCanceled,
		CreatedAt:   model.CreatedAt,
	}
}

func ToGORMDonateTransaction(tx *domain.DonateTransaction) *models.DonateTransactionModel {
	return &models.DonateTransactionModel{
		ID:          tx.ID,
		DonateID:    tx.DonateID,
		RecipientID: tx.RecipientID,
		Amount:      tx.Amount,
		IsConfirmed: tx.IsConfirmed,
		IsCanceled:  tx.IsCanceled,
		CreatedAt:   tx.CreatedAt,
	}
}

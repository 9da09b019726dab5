package services_test

import (
	"time"

	"bark-console/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"bark-console/internal/services/service_mocks"
)

func testAccount(id, balance string) models.Account {
	return models.Account{
		ID:            id,
		UserID:        gofakeit.UUID(),
		Name:          gofakeit.PetName(),
		AccountNumber: gofakeit.Numerify("################"),
		Balance:       decimal.RequireFromString(balance),
		CreatedAt:     time.Now().UTC(),
	}
}

func testTransfer(from, to, amount string) models.Transfer {
	return models.Transfer{
		ID:          gofakeit.UUID(),
		FromAccount: from,
		ToAccount:   to,
		Amount:      decimal.RequireFromString(amount),
		Timestamp:   time.Now().UTC(),
	}
}

func testUser(id string) models.User {
	return models.User{
		ID:       id,
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
	}
}

// relaxedMetrics returns a metrics mock that accepts any recording. Tests
// that assert on a specific metric build their own.
func relaxedMetrics(ctrl *gomock.Controller) *service_mocks.MockMetricsRecorderInterface {
	metrics := service_mocks.NewMockMetricsRecorderInterface(ctrl)
	metrics.EXPECT().IncrementCounter(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().RecordProcessingTime(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().RecordGauge(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return metrics
}

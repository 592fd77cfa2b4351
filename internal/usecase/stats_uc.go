package usecase

import (
	"context"
	"time"

	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}

type statsUC struct {
	profiles     repository.ProfileRepository
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	currency     string
	now          func() time.Time

	log *zerolog.Logger
}

func NewStatsUseCase(profiles repository.ProfileRepository, products repository.ProductRepository, transactions repository.TransactionRepository, currency string, logger *zerolog.Logger) *statsUC {
	return &statsUC{
		profiles:     profiles,
		products:     products,
		transactions: transactions,
		currency:     currency,
		now:          time.Now,
		log:          logger,
	}
}

// Dashboard counts customers and products and sums successful sales,
// all time and since the first day of the current month (UTC).
func (s *statsUC) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Dashboard")()

	out := &model.DashboardStats{Currency: s.currency, MonthStart: model.StartOfMonth(s.now())}
	var err error
	if out.Users, err = s.profiles.Count(ctx, repository.NoTX, time.Time{}); err != nil {
		return nil, err
	}
	if out.NewUsersInMonth, err = s.profiles.Count(ctx, repository.NoTX, out.MonthStart); err != nil {
		return nil, err
	}
	if out.Products, err = s.products.Count(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.Revenue, err = s.transactions.SumSuccess(ctx, repository.NoTX, time.Time{}); err != nil {
		return nil, err
	}
	if out.MonthRevenue, err = s.transactions.SumSuccess(ctx, repository.NoTX, out.MonthStart); err != nil {
		return nil, err
	}
	return out, nil
}

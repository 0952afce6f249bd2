package donation

import (
	"strconv"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/placement"
)

func (uc *DefaultDonationUsecase) recordPlacement(bt domain.BuildType, status domain.Status, outcome string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.PlacementsTotal.WithLabelValues(string(bt), string(status), outcome).Inc()
}

func (uc *DefaultDonationUsecase) recordRoute(bt domain.BuildType, route *placement.RouteResult, took time.Duration) {
	if uc.Metrics == nil || route == nil {
		return
	}
	outcome := "deferred"
	if route.Placeable {
		outcome = "placed"
	}
	uc.recordPlacement(bt, route.Status, outcome)
	uc.Metrics.SponsorWalkHops.WithLabelValues(string(bt)).Observe(float64(route.Hops))
	uc.Metrics.RouteDuration.WithLabelValues(string(bt)).Observe(took.Seconds())
	if route.Fallback {
		uc.Metrics.HouseFallbacks.WithLabelValues(string(bt), string(route.Status)).Inc()
	}
}

func (uc *DefaultDonationUsecase) recordDonateCreated(d *domain.Donate, status domain.Status) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.DonationsCreatedTotal.WithLabelValues(string(d.BuildType), string(status)).Inc()
	uc.Metrics.DonationsAmountTotal.WithLabelValues(string(d.BuildType)).Add(d.Amount)
}

func (uc *DefaultDonationUsecase) recordLegConfirmed(bt domain.BuildType) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.LegsConfirmedTotal.WithLabelValues(string(bt)).Inc()
}

func (uc *DefaultDonationUsecase) recordDonateConfirmed(d *domain.Donate, status domain.Status) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.DonationsConfirmedTotal.WithLabelValues(string(d.BuildType), string(status)).Inc()
	uc.Metrics.MatricesCreatedTotal.WithLabelValues(string(d.BuildType), string(status), "false").Inc()
}

func (uc *DefaultDonationUsecase) recordDonateExpired(d *domain.Donate) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.DonationsExpiredTotal.WithLabelValues(string(d.BuildType), string(uc.Config.CancelMode)).Inc()
}

func (uc *DefaultDonationUsecase) recordAttach(res *placement.AttachResult) {
	if uc.Metrics == nil || res == nil {
		return
	}
	for _, m := range res.Archived {
		house := strconv.FormatBool(m.OwnerID == res.HouseUserID)
		uc.Metrics.MatricesArchivedTotal.WithLabelValues(string(m.BuildType), string(m.Status), house).Inc()
	}
	for _, m := range res.Created {
		uc.Metrics.MatricesCreatedTotal.WithLabelValues(string(m.BuildType), string(m.Status), "true").Inc()
	}
}

func (uc *DefaultDonationUsecase) recordEngineError(op string, err error) {
	if uc.Metrics == nil || err == nil {
		return
	}
	uc.Metrics.EngineErrorsTotal.WithLabelValues(op).Inc()
}

func (uc *DefaultDonationUsecase) recordNotifyError(kind domain.NotificationKind) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.NotifyErrorsTotal.WithLabelValues(string(kind)).Inc()
}

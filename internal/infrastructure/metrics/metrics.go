package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MatrixMetrics содержит метрики размещения и подарков
type MatrixMetrics struct {
	// Размещения по исходу: placed / deferred / invalid_amount
	PlacementsTotal *prometheus.CounterVec
	// Сколько спонсоров пройдено вверх при поиске стола
	SponsorWalkHops *prometheus.HistogramVec
	RouteDuration   *prometheus.HistogramVec
	HouseFallbacks  *prometheus.CounterVec

	DonationsCreatedTotal   *prometheus.CounterVec
	DonationsAmountTotal    *prometheus.CounterVec
	DonationsConfirmedTotal *prometheus.CounterVec
	LegsConfirmedTotal      *prometheus.CounterVec
	DonationsExpiredTotal   *prometheus.CounterVec

	MatricesArchivedTotal *prometheus.CounterVec
	MatricesCreatedTotal  *prometheus.CounterVec

	// Ошибки
	EngineErrorsTotal *prometheus.CounterVec
	NotifyErrorsTotal *prometheus.CounterVec
}

// NewMatrixMetrics registers the collectors on reg. A nil reg uses the default registerer.
func NewMatrixMetrics(reg prometheus.Registerer) *MatrixMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &MatrixMetrics{
		PlacementsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matrix_placements_total",
				Help: "Количество попыток размещения по исходу",
			},
			[]string{"build_type", "status", "outcome"},
		),
		SponsorWalkHops: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matrix_sponsor_walk_hops",
				Help:    "Число спонсоров, пройденных вверх при поиске стола",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"build_type"},
		),
		RouteDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matrix_route_duration_seconds",
				Help:    "Время поиска стола",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"build_type"},
		),
		HouseFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matrix_house_fallbacks_total",
				Help: "Размещения в стол дома после неудачного обхода спонсоров",
			},
			[]string{"build_type", "status"},
		),

		DonationsCreatedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_created_total",
				Help: "Созданные подарки",
			},
			[]string{"build_type", "status"},
		),
		DonationsAmountTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_created_amount_total",
				Help: "Сумма созданных подарков",
			},
			[]string{"build_type"},
		),
		DonationsConfirmedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_confirmed_total",
				Help: "Полностью подтвержденные подарки",
			},
			[]string{"build_type", "status"},
		),
		LegsConfirmedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_legs_confirmed_total",
				Help: "Подтвержденные получателями доли подарков",
			},
			[]string{"build_type"},
		),
		DonationsExpiredTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_expired_total",
				Help: "Подарки, отмененные по истечении времени",
			},
			[]string{"build_type", "mode"},
		),

		MatricesArchivedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matrix_archived_total",
				Help: "Заполненные и закрытые столы",
			},
			[]string{"build_type", "status", "house"},
		),
		MatricesCreatedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matrix_created_total",
				Help: "Созданные столы",
			},
			[]string{"build_type", "status", "house"},
		),

		EngineErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_errors_total",
				Help: "Ошибки операций движка",
			},
			[]string{"op"},
		),
		NotifyErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notify_errors_total",
				Help: "Неудачные отправки уведомлений",
			},
			[]string{"kind"},
		),
	}
}

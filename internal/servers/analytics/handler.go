package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vysogota0399/fintech_dashboard/internal/controls"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/repositories"
)

type AnalyticsRepository interface {
	DailySummary(ctx context.Context, days int) ([]models.DailySummary, error)
	PaymentMethodStats(ctx context.Context) ([]models.PaymentMethodStats, error)
	TopMerchants(ctx context.Context, limit int) ([]models.TopMerchant, error)
	MerchantPerformance(ctx context.Context) ([]models.MerchantPerformance, error)
	CategoryPerformance(ctx context.Context) ([]models.CategoryPerformance, error)
	HourlyDistribution(ctx context.Context) ([]models.HourlyDistribution, error)
	StatusDistribution(ctx context.Context) ([]models.StatusDistribution, error)
	HighValueAnomalies(ctx context.Context, threshold float64) ([]models.HighValueAnomaly, error)
	HighFrequencyAnomalies(ctx context.Context, threshold int) ([]models.HighFrequencyAnomaly, error)
	KPIs(ctx context.Context) (*models.KPIs, error)
	Transactions(ctx context.Context, f models.TransactionFilter) ([]models.TransactionListing, error)
}

type operation func(ctx context.Context, get func(string) string) (any, error)

type Handler struct {
	analytics  AnalyticsRepository
	lg         *logging.ZapLogger
	operations map[string]operation
}

func NewHandler(analytics AnalyticsRepository, lg *logging.ZapLogger) *Handler {
	h := &Handler{analytics: analytics, lg: lg}

	h.operations = map[string]operation{
		"daily_summary": func(ctx context.Context, get func(string) string) (any, error) {
			days, err := controls.ParsePeriod(get("days"))
			if err != nil {
				return nil, err
			}
			return rowsOf(h.analytics.DailySummary(ctx, days))
		},
		"payment_method_stats": func(ctx context.Context, _ func(string) string) (any, error) {
			return rowsOf(h.analytics.PaymentMethodStats(ctx))
		},
		"top_merchants": func(ctx context.Context, get func(string) string) (any, error) {
			limit, err := controls.ParseTop(get("limit"))
			if err != nil {
				return nil, err
			}
			return rowsOf(h.analytics.TopMerchants(ctx, limit))
		},
		"merchant_performance": func(ctx context.Context, _ func(string) string) (any, error) {
			return rowsOf(h.analytics.MerchantPerformance(ctx))
		},
		"category_performance": func(ctx context.Context, _ func(string) string) (any, error) {
			return rowsOf(h.analytics.CategoryPerformance(ctx))
		},
		"hourly_distribution": func(ctx context.Context, _ func(string) string) (any, error) {
			return rowsOf(h.analytics.HourlyDistribution(ctx))
		},
		"status_distribution": func(ctx context.Context, _ func(string) string) (any, error) {
			return rowsOf(h.analytics.StatusDistribution(ctx))
		},
		"high_value_anomalies": func(ctx context.Context, get func(string) string) (any, error) {
			threshold, err := controls.ParseHighValue(get("threshold"))
			if err != nil {
				return nil, err
			}
			return rowsOf(h.analytics.HighValueAnomalies(ctx, threshold))
		},
		"high_frequency_anomalies": func(ctx context.Context, get func(string) string) (any, error) {
			threshold, err := controls.ParseFrequency(get("threshold"))
			if err != nil {
				return nil, err
			}
			return rowsOf(h.analytics.HighFrequencyAnomalies(ctx, threshold))
		},
		"transactions": func(ctx context.Context, get func(string) string) (any, error) {
			f, err := controls.ParseFilter(get)
			if err != nil {
				return nil, err
			}
			return rowsOf(h.analytics.Transactions(ctx, f))
		},
	}

	return h
}

// Query expects {"operation": "<name>", ...params} and answers
// {"operation": "<name>", "rows": [...]}, or {"operation": "kpis", "kpis": {...}}.
func (h *Handler) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	get := paramsOf(req)
	name := get("operation")
	ctx = h.lg.WithContextFields(ctx, zap.String("operation", name))

	payload := map[string]any{"operation": name}

	if name == "kpis" {
		k, err := h.analytics.KPIs(ctx)
		if err != nil {
			return nil, h.internal(ctx, err)
		}
		payload["kpis"] = k
	} else {
		op, ok := h.operations[name]
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown operation %q", name)
		}

		rows, err := op(ctx, get)
		if err != nil {
			if errors.Is(err, controls.ErrInvalidControl) || errors.Is(err, repositories.ErrInvalidFilter) {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}

			return nil, h.internal(ctx, err)
		}
		payload["rows"] = rows
	}

	res, err := toStruct(payload)
	if err != nil {
		return nil, h.internal(ctx, err)
	}

	h.lg.DebugCtx(ctx, "analytics query served")
	return res, nil
}

func (h *Handler) internal(ctx context.Context, err error) error {
	h.lg.ErrorCtx(ctx, "analytics query failed", zap.Error(err))
	return status.Error(codes.Internal, "analytics query failed")
}

func rowsOf[T any](rows []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}

	return rows, nil
}

// paramsOf reads request fields as the strings the HTTP controls accept.
// Numbers are formatted without a fraction when they have none.
func paramsOf(req *structpb.Struct) func(string) string {
	fields := req.GetFields()

	return func(key string) string {
		v, ok := fields[key]
		if !ok {
			return ""
		}

		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			return k.StringValue
		case *structpb.Value_NumberValue:
			return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
		case *structpb.Value_BoolValue:
			return strconv.FormatBool(k.BoolValue)
		default:
			return ""
		}
	}
}

// toStruct goes through the JSON encoding of the models, so the wire shape
// matches the HTTP API.
func toStruct(payload map[string]any) (*structpb.Struct, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("handler: marshal payload error %w", err)
	}

	res := &structpb.Struct{}
	if err := protojson.Unmarshal(b, res); err != nil {
		return nil, fmt.Errorf("handler: decode payload error %w", err)
	}

	return res, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"rate-shopper/models"
	"rate-shopper/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"

	aws_pkg "rate-shopper/pkg/aws"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// MetricsRecorder records quote metrics. *aws.MetricsClient implements it.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
	RecordValue(ctx context.Context, metricName string, value float64, dimensions map[string]string) error
}

// QuoteService defines the business logic interface.
type QuoteService interface {
	GetRates(ctx context.Context, doc *models.ShipmentDocument) (*models.QuoteResponse, *ServiceError)
	ProviderName() string
}

type quoteServiceImpl struct {
	aggregator  *Aggregator
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	metrics     MetricsRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewQuoteService creates a new QuoteService. snsClient and metrics may be nil.
func NewQuoteService(
	aggregator *Aggregator,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics MetricsRecorder,
	logger *zap.Logger,
) QuoteService {
	return &quoteServiceImpl{
		aggregator:  aggregator,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *quoteServiceImpl) ProviderName() string { return s.aggregator.ProviderName() }

// GetRates quotes every carrier contract for the shipment document.
func (s *quoteServiceImpl) GetRates(ctx context.Context, doc *models.ShipmentDocument) (*models.QuoteResponse, *ServiceError) {
	start := s.now()
	req := doc.QuoteRequest()
	quoteID := uuid.NewString()

	log := s.logger.With(
		zap.String("quote_id", quoteID),
		zap.String("shipment", doc.Shipment),
	)
	log.Info("Quote requested",
		zap.String("origin", req.Origin.Country+"/"+req.Origin.PostalCode),
		zap.String("destination", req.Destination.Country+"/"+req.Destination.PostalCode),
		zap.Float64("total_weight_kg", req.TotalWeightKg),
		zap.Float64("max_package_weight_kg", req.MaxPackageWeightKg),
		zap.Int("packages", req.PackageCount),
		zap.Bool("dimensions", req.Dimensions != nil),
	)

	result, err := s.aggregator.Quote(ctx, req)
	if err != nil {
		log.Error("Quote failed", zap.Error(err))
		s.recordMetrics(func(ctx context.Context, dims map[string]string) {
			_ = s.metrics.RecordCount(ctx, aws_pkg.MetricDiscoveryFailure, dims)
		})
		return nil, toServiceError(err)
	}

	latency := s.now().Sub(start)
	options := toRateOptions(result.Methods)

	log.Info("Quote completed",
		zap.Int("discovered", result.Stats.Discovered),
		zap.Int("unpriced", result.Stats.Unpriced),
		zap.Int("options", len(options)),
		zap.Duration("latency", latency),
	)

	s.recordMetrics(func(ctx context.Context, dims map[string]string) {
		_ = s.metrics.RecordCount(ctx, aws_pkg.MetricQuotesRequested, dims)
		_ = s.metrics.RecordLatency(ctx, aws_pkg.MetricQuoteLatency, latency, dims)
		_ = s.metrics.RecordValue(ctx, aws_pkg.MetricQuoteOptions, float64(len(options)), dims)
		_ = s.metrics.RecordValue(ctx, aws_pkg.MetricUnpricedMethods, float64(result.Stats.Unpriced), dims)
	})

	resp := &models.QuoteResponse{
		Success:     true,
		QuoteID:     quoteID,
		ShipmentID:  doc.Shipment,
		Origin:      req.Origin,
		Destination: req.Destination,
		WeightKg:    req.TotalWeightKg,
		Packages:    req.PackageCount,
		Results:     options,
		Meta: models.QuoteMeta{
			LatencyMs: latency.Milliseconds(),
			Timestamp: s.now().UTC(),
			Provider:  s.ProviderName(),
		},
	}

	s.publishEvent(ctx, ratesQuotedEvent(resp))
	return resp, nil
}

// toServiceError maps a discovery failure to the status returned to the client.
// Provider rejections of the shipment itself become 400s.
func toServiceError(err error) *ServiceError {
	var perr *providers.ProviderError
	if errors.As(err, &perr) && perr.Kind == providers.KindProviderStatus {
		switch perr.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return &ServiceError{StatusCode: http.StatusBadRequest, Message: perr.Message}
		}
	}
	return &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to retrieve shipping rates: " + err.Error()}
}

func toRateOptions(methods []models.PricedMethod) []models.RateOption {
	options := make([]models.RateOption, 0, len(methods))
	for _, m := range methods {
		account := m.ContractID
		if account == "" {
			account = m.ID
		}
		options = append(options, models.RateOption{
			ID:            m.ID,
			Carrier:       m.Carrier,
			Service:       m.Name,
			AccountNumber: account,
			DeliveryTime:  m.DeliveryTime,
			Price:         m.Price,
			Currency:      m.Currency,
		})
	}
	return options
}

func ratesQuotedEvent(resp *models.QuoteResponse) models.RatesQuotedEvent {
	event := models.RatesQuotedEvent{
		EventType:   "rates_quoted",
		QuoteID:     resp.QuoteID,
		ShipmentID:  resp.ShipmentID,
		Origin:      resp.Origin,
		Destination: resp.Destination,
		WeightKg:    resp.WeightKg,
		OptionCount: len(resp.Results),
		Timestamp:   resp.Meta.Timestamp,
	}
	for i, o := range resp.Results {
		if i == 0 || o.Price < event.CheapestPrice {
			event.CheapestPrice = o.Price
			event.Currency = o.Currency
		}
	}
	return event
}

// recordMetrics runs fn in the background so CloudWatch latency never delays
// the response.
func (s *quoteServiceImpl) recordMetrics(fn func(ctx context.Context, dims map[string]string)) {
	if s.metrics == nil {
		return
	}
	dims := map[string]string{"Provider": s.ProviderName()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx, dims)
	}()
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (s *quoteServiceImpl) publishEvent(ctx context.Context, event interface{}) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		s.logger.Debug("SNS not configured, skipping event publish")
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.Error(err))
		return
	}
	s.logger.Info("Published SNS event", zap.String("topic", s.snsTopicArn))
}

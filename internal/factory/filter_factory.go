package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

// FilterFactory creates the intakes enabled in the configuration
type FilterFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	triager   ports.Triager
	extractor core.TextExtractor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	triager ports.Triager,
	extractor core.TextExtractor,
) *FilterFactory {
	return &FilterFactory{
		cfg:       cfg,
		logger:    logger,
		triager:   triager,
		extractor: extractor,
	}
}

// CreateEmailFilters creates every enabled intake
func (f *FilterFactory) CreateEmailFilters() ([]ports.EmailFilter, error) {
	var filters []ports.EmailFilter

	httpCfg, err := f.cfg.GetHTTP()
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP intake configuration: %w", err)
	}
	if httpCfg.Enabled {
		filters = append(filters, filter.NewHTTPFilter(
			f.triager,
			f.extractor,
			httpCfg,
			f.logger.Named("http"),
		))
	}

	smtpCfg, err := f.cfg.GetSMTP()
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP intake configuration: %w", err)
	}
	if smtpCfg.Enabled {
		filters = append(filters, filter.NewSMTPFilter(
			f.triager,
			smtpCfg,
			f.logger.Named("smtp"),
		))
	}

	if len(filters) == 0 {
		return nil, fmt.Errorf("no intake enabled: set server.http.enabled or server.smtp.enabled")
	}
	return filters, nil
}

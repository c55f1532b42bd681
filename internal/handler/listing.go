package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/service"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
	applog "github.com/noah-isme/dorm-adp-api/pkg/logger"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

// ListSupport carries the page limits and instrumentation shared by list endpoints.
type ListSupport struct {
	DefaultLimit int
	MaxLimit     int
	Metrics      *service.MetricsService
	Logger       *zap.Logger
}

func (s ListSupport) normalizer(c *gin.Context) *listing.Normalizer {
	return listing.NewNormalizer(c.Request.URL.Query()).WithLimits(s.DefaultLimit, s.MaxLimit)
}

// respond reports ignored parameters, then writes the list envelope.
func (s ListSupport) respond(c *gin.Context, resource string, n *listing.Normalizer, data interface{}, count int, meta *listing.Meta) {
	response.List(c, data, count, meta, s.reportWarnings(c, resource, n))
}

// reportWarnings logs and counts every parameter the normalizer dropped.
func (s ListSupport) reportWarnings(c *gin.Context, resource string, n *listing.Normalizer) []listing.Warning {
	warnings := n.Warnings()
	if len(warnings) == 0 {
		return warnings
	}
	logger := applog.FromContext(s.Logger, c)
	for _, w := range warnings {
		logger.Warn("ignored list parameter",
			zap.String("resource", resource),
			zap.String("field", w.Field),
			zap.String("value", w.Value),
			zap.String("reason", w.Reason))
		s.Metrics.RecordQueryWarning(resource, w.Field)
	}
	return warnings
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

package client

import (
	"net/http"
	"time"

	"github.com/Belphemur/CaptionExport/internal/config"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/failsafehttp"
)

// newBreakerTransport stops calling the API after failureThreshold consecutive
// transport errors or 5xx answers. While open, requests fail immediately with
// circuitbreaker.ErrOpen; after delay one trial request is let through.
// A threshold of 0 disables the breaker. Nothing is retried.
func newBreakerTransport(inner http.RoundTripper, failureThreshold uint, delay time.Duration) http.RoundTripper {
	if failureThreshold == 0 {
		return inner
	}

	logger := config.GetLogger()
	breaker := circuitbreaker.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode >= http.StatusInternalServerError)
		}).
		WithFailureThreshold(failureThreshold).
		WithDelay(delay).
		OnOpen(func(circuitbreaker.StateChangedEvent) {
			logger.Warn().Uint("failureThreshold", failureThreshold).Dur("delay", delay).Msg("YouTube API circuit breaker opened")
		}).
		OnClose(func(circuitbreaker.StateChangedEvent) {
			logger.Info().Msg("YouTube API circuit breaker closed")
		}).
		Build()

	return failsafehttp.NewRoundTripper(inner, breaker)
}

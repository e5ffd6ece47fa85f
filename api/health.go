package api

import (
	"net/http"
	"time"

	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/errors"
)

// healthHandler godoc
// @Summary Service status
// @Description Get the service status, the environment and the available endpoints
// @Tags health
// @Produce json
// @Success 200 {object} apicommon.HealthInfo
// @Router / [get]
func (a *API) healthHandler(w http.ResponseWriter, _ *http.Request) {
	apicommon.HTTPWriteJSON(w, &apicommon.HealthInfo{
		Message:     "Payments backend is running",
		Status:      "ok",
		Environment: a.env,
		Timestamp:   time.Now().UTC(),
		Endpoints:   availableEndpoints,
	})
}

func (*API) notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	errors.ErrEndpointNotFound.WithData(&apicommon.NotFoundData{
		AvailableEndpoints: availableEndpoints,
	}).Write(w)
}

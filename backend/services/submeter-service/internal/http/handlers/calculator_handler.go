package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"submeter/backend/services/submeter-service/internal/models"
	"submeter/backend/services/submeter-service/internal/service"
)

const maxBodyBytes = 4 << 10

// CalculatorHandlers serves the one-shot calculator endpoints.
type CalculatorHandlers struct {
	service *service.CalculatorService
	logger  *zap.Logger
}

// NewCalculatorHandlers builds handlers.
func NewCalculatorHandlers(svc *service.CalculatorService, logger *zap.Logger) *CalculatorHandlers {
	return &CalculatorHandlers{
		service: svc,
		logger:  logger,
	}
}

// rawValue accepts either a JSON string or a bare JSON number and keeps its text.
type rawValue struct {
	set  bool
	text string
}

func (v *rawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	v.set = true
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &v.text)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("reading must be a string or a number")
	}
	v.text = n.String()
	return nil
}

type submitRequest struct {
	Current  rawValue `json:"current"`
	Previous rawValue `json:"previous"`
	Rate     rawValue `json:"rate"`
}

type submitResponse struct {
	Result models.Result    `json:"result"`
	State  models.FormState `json:"state"`
}

// Submit handles POST /api/calculator/submit. An omitted previous reading falls back to
// the persisted one, the same way a freshly opened form is pre-filled.
func (h *CalculatorHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	session := h.service.OpenSession(r.Context())
	for _, field := range []struct {
		name  models.Field
		value rawValue
	}{
		{models.FieldCurrent, req.Current},
		{models.FieldPrevious, req.Previous},
		{models.FieldRate, req.Rate},
	} {
		if field.value.set {
			session.Edit(field.name, field.value.text)
		}
	}

	result := session.SubmitCurrent(r.Context())
	status := http.StatusOK
	if !result.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, submitResponse{
		Result: result,
		State:  session.State(),
	})
}

// Previous handles GET /api/calculator/previous.
func (h *CalculatorHandlers) Previous(w http.ResponseWriter, r *http.Request) {
	previous, ok := h.service.PreviousReading(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "previous reading not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"previous": previous})
}

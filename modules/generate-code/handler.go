package generatecode

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/a-elhaag/canvas-smith/modules/common/apperr"
)

type Handler struct {
	service      *Service
	maxBodyBytes int64
}

func NewHandler(service *Service, maxBodyBytes int64) *Handler {
	return &Handler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
	}
}

// GenerateCode handles POST /api/ai/generate-code. The request is multipart
// form data: an "image" file plus optional "framework" and
// "additional_instructions" fields.
func (h *Handler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	// Headroom over the image limit for the multipart framing and text fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes+1<<20)

	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		writeError(w, apperr.New(apperr.KindFileTooLarge, "request body too large or malformed multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.New(apperr.KindCorruptImage, "missing image file in form field 'image'"))
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindCorruptImage, err, "failed to read uploaded image"))
		return
	}

	framework := r.FormValue("framework")
	instructions := r.FormValue("additional_instructions")

	result, err := h.service.GenerateFromSketch(r.Context(), imageData,
		header.Header.Get("Content-Type"), header.Filename, framework, instructions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateCodeResponse{
		Success:       true,
		GeneratedCode: result.Code,
		Framework:     result.Metadata.Framework,
		Result:        result,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// GetHealth handles GET /api/ai/health with a live upstream probe.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := h.service.HealthCheck(r.Context())

	status := http.StatusOK
	if report.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// GetConfigCheck handles GET /api/ai/config-check.
func (h *Handler) GetConfigCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ConfigCheck())
}

// GetSupportedFrameworks handles GET /api/ai/supported-frameworks.
func (h *Handler) GetSupportedFrameworks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frameworks": SupportedFrameworks(),
		"default":    "html",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		log.Printf("❌ Request failed (%d): %v", status, err)
	}

	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Kind:    string(apperr.KindOf(err)),
			Message: err.Error(),
		},
	})
}

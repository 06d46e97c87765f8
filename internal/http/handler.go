package http

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"go.ngs.io/fieldmap/internal/adapter/render"
	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/domain"
	"go.ngs.io/fieldmap/internal/usecase"
)

// Handler handles HTTP requests for frames and figures.
type Handler struct {
	plotUC *usecase.PlotUseCase
	log    logrus.FieldLogger
}

// NewHandler creates a new HTTP handler.
func NewHandler(plotUC *usecase.PlotUseCase, log logrus.FieldLogger) *Handler {
	return &Handler{
		plotUC: plotUC,
		log:    log,
	}
}

// FrameResponse is the JSON form of a frame. NaN cells are null.
type FrameResponse struct {
	Kind       string    `json:"kind"`
	Variables  []string  `json:"variables"`
	TimeIndex  int       `json:"time_index"`
	DepthIndex int       `json:"depth_index"`
	Lat        []float64 `json:"lat"`
	Lon        []float64 `json:"lon"`

	Scalar       [][]*float64 `json:"scalar,omitempty"`
	LatComponent [][]*float64 `json:"lat_component,omitempty"`
	LonComponent [][]*float64 `json:"lon_component,omitempty"`
	Magnitude    [][]*float64 `json:"magnitude,omitempty"`
	X            [][]*float64 `json:"x,omitempty"`
	Y            [][]*float64 `json:"y,omitempty"`
}

// ProbeRequest asks for the map value at one point.
type ProbeRequest struct {
	Request usecase.PlotRequest `json:"request"`
	Lat     float64             `json:"lat"`
	Lon     float64             `json:"lon"`
}

// ProbeResponse is the interpolated map value; null over land or missing data.
type ProbeResponse struct {
	Kind      string   `json:"kind"`
	Variables []string `json:"variables"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Value     *float64 `json:"value"`
}

// ListVariables handles GET /v1/variables.
func (h *Handler) ListVariables(c *gin.Context) {
	vars, err := h.plotUC.Variables()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vars)
}

// GetDimensions handles GET /v1/variables/:name/dimensions. One-dimensional
// variables also report their length, the bound for time and depth indices.
func (h *Handler) GetDimensions(c *gin.Context) {
	name := c.Param("name")
	dims, err := h.plotUC.Dimensions(name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"variable":   name,
		"dimensions": dims,
	}
	if len(dims) == 1 {
		n, err := h.plotUC.AxisLength(name)
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp["length"] = n
	}
	c.JSON(http.StatusOK, resp)
}

// BuildFrame handles POST /v1/frames.
func (h *Handler) BuildFrame(c *gin.Context) {
	var req usecase.PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	frame, err := h.plotUC.BuildFrame(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFrameResponse(frame))
}

// Render handles POST /v1/renders?format=png.
func (h *Handler) Render(c *gin.Context) {
	var req usecase.PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if format := c.Query("format"); format != "" {
		req.Format = strings.ToLower(format)
	}

	p, opts, _, err := h.plotUC.Render(req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	format := req.Format
	if format == "" {
		format = render.DefaultFormat
	}
	var buf bytes.Buffer
	if err := render.Encode(p, opts, format, &buf); err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, render.ContentType(format), buf.Bytes())
}

// Probe handles POST /v1/probes.
func (h *Handler) Probe(c *gin.Context) {
	var req ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	v, frame, err := h.plotUC.Probe(req.Request, req.Lon, req.Lat)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProbeResponse{
		Kind:      frame.Kind,
		Variables: frame.Variables,
		Lat:       req.Lat,
		Lon:       req.Lon,
		Value:     nullable(v),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps engine and request errors to status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	if kind := domain.Kind(err); kind != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind})
		return
	}
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_request"})
	case errors.Is(err, store.ErrVariableNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": "variable_not_found"})
	default:
		h.log.WithField("request_id", c.GetString(requestIDKey)).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func newFrameResponse(f *usecase.Frame) FrameResponse {
	return FrameResponse{
		Kind:         f.Kind,
		Variables:    f.Variables,
		TimeIndex:    f.TimeIndex,
		DepthIndex:   f.DepthIndex,
		Lat:          f.Lat,
		Lon:          f.Lon,
		Scalar:       rows(f.Scalar),
		LatComponent: rows(f.LatComponent),
		LonComponent: rows(f.LonComponent),
		Magnitude:    rows(f.Magnitude),
		X:            rows(f.X),
		Y:            rows(f.Y),
	}
}

// rows converts a slice to nested rows, lat-major.
func rows(m *mat.Dense) [][]*float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := make([][]*float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]*float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = nullable(m.At(i, j))
		}
	}
	return out
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

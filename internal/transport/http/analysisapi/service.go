package analysisapi

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"glamai-server-go/internal/domain/analysis"
	domainimage "glamai-server-go/internal/domain/image"
	"glamai-server-go/internal/platform/config"
	platformerrors "glamai-server-go/internal/platform/errors"
	"glamai-server-go/internal/platform/logging"
	httptransport "glamai-server-go/internal/transport/http"
)

// Service exposes the appearance-analysis endpoints.
type Service struct {
	config   *config.Config
	logger   *logging.Logger
	analyzer *analysis.Analyzer
}

// inlineRequest is the JSON alternative to a multipart upload. At
// most one of the two fields may be set.
type inlineRequest struct {
	ImageBase64 string `json:"imageBase64"`
	ImageURL    string `json:"imageUrl"`
}

// captureProfile is what a capture client needs to frame the photo
// before uploading it.
type captureProfile struct {
	Kind        string  `json:"kind"`
	DisplayName string  `json:"displayName"`
	AspectW     int     `json:"aspectWidth"`
	AspectH     int     `json:"aspectHeight"`
	Quality     float64 `json:"quality"`
	MaxFileSize int64   `json:"maxFileSize"`
}

// analysisReply carries the parsed result plus what the pipeline saw.
type analysisReply struct {
	Kind   string          `json:"kind"`
	Result analysis.Result `json:"result"`
	Image  imageSummary    `json:"image"`
}

type imageSummary struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

func NewService(cfg *config.Config, logger *logging.Logger, analyzer *analysis.Analyzer) (*Service, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysisapi.new", "config is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysisapi.new", "logger is required")
	}
	if analyzer == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysisapi.new", "analyzer is required")
	}

	return &Service{
		config:   cfg,
		logger:   logger,
		analyzer: analyzer,
	}, nil
}

// Register mounts the analysis routes. All of them require a session.
func (s *Service) Register(ctx context.Context, secured *gin.RouterGroup) error {
	secured.GET("/analysis/kinds", s.handleKinds)
	secured.GET("/analysis/:kind", s.handleProfile)
	secured.POST("/analysis/:kind", s.handleAnalyze)

	s.logger.InfoTag("HTTP", "analysis routes registered")
	return nil
}

func (s *Service) handleKinds(c *gin.Context) {
	kinds := analysis.Kinds()
	profiles := make([]captureProfile, 0, len(kinds))
	for _, kind := range kinds {
		profile, err := analysis.ProfileFor(kind)
		if err != nil {
			continue
		}
		profiles = append(profiles, s.toCaptureProfile(profile))
	}
	httptransport.RespondSuccess(c, http.StatusOK, profiles, "")
}

func (s *Service) handleProfile(c *gin.Context) {
	kind, err := analysis.ParseKind(c.Param("kind"))
	if err != nil {
		httptransport.RespondError(c, http.StatusNotFound, err.Error(), nil)
		return
	}

	profile, err := analysis.ProfileFor(kind)
	if err != nil {
		httptransport.RespondError(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, s.toCaptureProfile(profile), "")
}

func (s *Service) handleAnalyze(c *gin.Context) {
	kind, err := analysis.ParseKind(c.Param("kind"))
	if err != nil {
		httptransport.RespondError(c, http.StatusNotFound, err.Error(), nil)
		return
	}

	src, closeSrc, err := s.sourceFromRequest(c)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if closeSrc != nil {
		defer closeSrc()
	}

	callerID := httptransport.UserID(c)
	result, captured, err := s.analyzer.Analyze(c.Request.Context(), callerID, kind, src)
	if err != nil {
		httptransport.RespondFromError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, analysisReply{
		Kind:   string(kind),
		Result: result,
		Image: imageSummary{
			Format: captured.Format,
			Width:  captured.Width,
			Height: captured.Height,
			Size:   captured.Size,
		},
	}, "analysis complete")
}

// sourceFromRequest accepts either a multipart upload under the
// "image" field or a JSON body naming an inline payload or a URL.
func (s *Service) sourceFromRequest(c *gin.Context) (domainimage.Source, func(), error) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return domainimage.Source{}, nil, platformerrors.Wrap(platformerrors.KindImage, "analysisapi.source", "missing image file", err)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return domainimage.Source{}, nil, platformerrors.Wrap(platformerrors.KindImage, "analysisapi.source", "open upload", err)
		}

		return domainimage.Source{
			Reader:         file,
			URI:            fileHeader.Filename,
			DeclaredFormat: declaredFormat(fileHeader),
		}, func() { file.Close() }, nil
	}

	var req inlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return domainimage.Source{}, nil, platformerrors.Wrap(platformerrors.KindImage, "analysisapi.source", "invalid request body", err)
	}

	switch {
	case req.ImageBase64 != "" && req.ImageURL != "":
		return domainimage.Source{}, nil, platformerrors.New(platformerrors.KindImage, "analysisapi.source", "imageBase64 and imageUrl are mutually exclusive")
	case req.ImageBase64 != "":
		return domainimage.Source{Inline: req.ImageBase64}, nil, nil
	case req.ImageURL != "":
		return domainimage.Source{URL: req.ImageURL, URI: req.ImageURL}, nil, nil
	default:
		return domainimage.Source{}, nil, platformerrors.New(platformerrors.KindImage, "analysisapi.source", "no image payload provided")
	}
}

func declaredFormat(header *multipart.FileHeader) string {
	if contentType := header.Header.Get("Content-Type"); strings.HasPrefix(contentType, "image/") {
		return strings.TrimPrefix(contentType, "image/")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	return ext
}

func (s *Service) toCaptureProfile(profile analysis.Profile) captureProfile {
	return captureProfile{
		Kind:        string(profile.Kind),
		DisplayName: profile.DisplayName,
		AspectW:     profile.Capture.AspectWidth,
		AspectH:     profile.Capture.AspectHeight,
		Quality:     profile.Capture.Quality,
		MaxFileSize: s.config.Image.MaxFileSize,
	}
}

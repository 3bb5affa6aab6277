package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adilg123/lzw-compression-tool/internal/compression"
	"github.com/adilg123/lzw-compression-tool/internal/config"
	"github.com/adilg123/lzw-compression-tool/internal/derrors"
	"github.com/adilg123/lzw-compression-tool/internal/log"
)

// multipartOverhead is the room allowed for form fields and part headers on
// top of the file itself.
const multipartOverhead = 64 * 1024

// CompressRequest represents the form fields of a compression or
// decompression request
type CompressRequest struct {
	Algorithm          string `form:"algorithm"`
	DictionaryCapacity *int   `form:"dictionary_capacity,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler serves the compression endpoints with the limits from cfg.
type Handler struct {
	cfg *config.Config
}

// NewHandler returns a Handler.  A nil cfg selects config.Default.
func NewHandler(cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{cfg: cfg}
}

type codecFunc func(context.Context, []byte, compression.Options) ([]byte, *compression.Stats, error)

// HandleCompress handles file compression requests
func (h *Handler) HandleCompress(c *gin.Context) {
	h.process(c, "Compression failed", compression.Compress, func(name, algorithm string) string {
		return fmt.Sprintf("%s.%s", getBaseFilename(name), getExtensionForAlgorithm(algorithm))
	})
}

// HandleDecompress handles file decompression requests
func (h *Handler) HandleDecompress(c *gin.Context) {
	h.process(c, "Decompression failed", compression.Decompress, func(name, algorithm string) string {
		// "report.txt.lzw" comes back as "report.txt".
		if ext := "." + getExtensionForAlgorithm(algorithm); strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext)
		}
		return fmt.Sprintf("%s_decompressed", getBaseFilename(name))
	})
}

func (h *Handler) process(c *gin.Context, failure string, run codecFunc, outputName func(name, algorithm string) string) {
	ctx := c.Request.Context()

	limit := h.cfg.MaxFileSize + multipartOverhead
	if c.Request.ContentLength > limit {
		h.writeTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var req CompressRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			h.writeTooLarge(c)
			return
		}
		writeError(c, "Invalid request", fmt.Errorf("%v: %w", err, derrors.InvalidArgument))
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = compression.DefaultAlgorithm
	}

	// Validate algorithm
	if !compression.IsValidAlgorithm(req.Algorithm) {
		writeError(c, "Invalid algorithm", fmt.Errorf("supported algorithms: %v: %w",
			compression.GetSupportedAlgorithms(), derrors.InvalidArgument))
		return
	}

	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if isBodyTooLarge(err) {
		h.writeTooLarge(c)
		return
	}
	if err != nil {
		writeError(c, "File upload error", fmt.Errorf("no file provided or file upload failed: %w", derrors.InvalidArgument))
		return
	}
	defer file.Close()

	// Check file size
	if header.Size > h.cfg.MaxFileSize {
		h.writeTooLarge(c)
		return
	}

	fileContent, err := io.ReadAll(file)
	if err != nil {
		writeError(c, "File read error", fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	options := compression.Options{
		Algorithm:          req.Algorithm,
		DictionaryCapacity: h.cfg.DictionaryCapacity,
		MaxOutputSize:      h.cfg.MaxOutputSize,
	}
	if req.DictionaryCapacity != nil {
		options.DictionaryCapacity = *req.DictionaryCapacity
	}

	output, stats, err := run(ctx, fileContent, options)
	if err != nil {
		log.Warningf(ctx, "%s %q: %v", c.FullPath(), header.Filename, err)
		writeError(c, failure, err)
		return
	}

	filename := outputName(header.Filename, req.Algorithm)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("X-Original-Size", strconv.Itoa(stats.OriginalSize))
	c.Header("X-Processed-Size", strconv.Itoa(stats.ProcessedSize))
	c.Header("X-Compression-Ratio", strconv.FormatFloat(stats.CompressionRatio, 'f', 2, 64))
	c.Data(http.StatusOK, "application/octet-stream", output)
}

// HandleInfo provides information about supported algorithms
func (h *Handler) HandleInfo(c *gin.Context) {
	info := map[string]interface{}{
		"service": "LZW Compression/Decompression Tool",
		"version": "1.0.0",
		"algorithms": map[string]interface{}{
			"supported": compression.GetSupportedAlgorithms(),
			"default":   compression.DefaultAlgorithm,
			"descriptions": map[string]string{
				"lzw": "Lempel-Ziv-Welch - dictionary-based compression with adaptive code width and dictionary resets",
			},
		},
		"limits": map[string]interface{}{
			"max_file_size":       fmt.Sprintf("%d bytes (%.1f MB)", h.cfg.MaxFileSize, float64(h.cfg.MaxFileSize)/(1024*1024)),
			"max_output_size":     fmt.Sprintf("%d bytes (%.1f MB)", h.cfg.MaxOutputSize, float64(h.cfg.MaxOutputSize)/(1024*1024)),
			"dictionary_capacity": h.cfg.DictionaryCapacity,
		},
		"endpoints": map[string]interface{}{
			"compress":   "POST /compress - Upload file for compression",
			"decompress": "POST /decompress - Upload file for decompression",
			"info":       "GET /info - Get service information",
			"health":     "GET /health - Health check",
		},
	}

	c.JSON(http.StatusOK, info)
}

// HandleHealth provides a simple health check endpoint
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "compression-service",
	})
}

// writeError reports err as JSON with the status derrors assigns to it.
func writeError(c *gin.Context, title string, err error) {
	code := derrors.ToHTTPStatus(err)
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   title,
		Code:    code,
		Message: err.Error(),
	})
}

func (h *Handler) writeTooLarge(c *gin.Context) {
	writeError(c, "File too large", fmt.Errorf("maximum file size is %d bytes: %w", h.cfg.MaxFileSize, derrors.TooLarge))
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// Helper functions
func getBaseFilename(filename string) string {
	if filename == "" {
		return "file"
	}

	// Remove extension
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}

func getExtensionForAlgorithm(algorithm string) string {
	extensions := map[string]string{
		"lzw": "lzw",
	}

	if ext, exists := extensions[algorithm]; exists {
		return ext
	}
	return "compressed"
}

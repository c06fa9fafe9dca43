// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/paper-finder/internal/token"
)

const maxFilenameLen = 140

// handleDownload redeems the token and streams the upstream file to the
// caller. The token is consumed by the redemption whether or not the
// upstream fetch succeeds; a stolen token cannot be used to probe the
// target URL repeatedly.
func (s *Server) handleDownload(c *gin.Context) {
	entry, err := s.tokens.Redeem(c.Param("token"))
	switch {
	case errors.Is(err, token.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "download token not found; run lookup again to mint a fresh one"})
		return
	case errors.Is(err, token.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "download token expired; run lookup again to mint a fresh one"})
		return
	case errors.Is(err, token.ErrAlreadyUsed):
		c.JSON(http.StatusGone, gin.H{"error": "download token already used; run lookup again to mint a fresh one"})
		return
	case err != nil:
		log.Printf("token redemption failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, entry.TargetURL, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch upstream full text"})
		return
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch upstream full text"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode)})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filename := filenameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = sanitizeFilename(entry.Filename)
	}

	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	contentDisposition  = regexp.MustCompile(`filename\*?=(?:UTF-8'')?"?([^";]+)"?`)
)

// sanitizeFilename turns a paper title into a safe attachment filename:
// unsafe runs become underscores, a .pdf suffix is ensured, and the
// result is capped at 140 characters.
func sanitizeFilename(raw string) string {
	cleaned := strings.Trim(unsafeFilenameChars.ReplaceAllString(raw, "_"), "_")
	if cleaned == "" {
		cleaned = "paper"
	}
	if !strings.HasSuffix(strings.ToLower(cleaned), ".pdf") {
		cleaned += ".pdf"
	}
	if len(cleaned) > maxFilenameLen {
		cleaned = cleaned[:maxFilenameLen]
	}
	return cleaned
}

// filenameFromContentDisposition extracts and sanitizes the filename from
// an upstream Content-Disposition header, or returns "" when absent.
func filenameFromContentDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	m := contentDisposition.FindStringSubmatch(cd)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return ""
	}
	return sanitizeFilename(strings.TrimSpace(m[1]))
}

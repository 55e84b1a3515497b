package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Admin reads are per-user; shared caches must not store them and clients
// must revalidate every time.
const etagCacheControl = "private, no-cache"

// RespondDataWithETag writes the {status, data} envelope with a weak ETag
// over the exact bytes sent, answering 304 when If-None-Match matches.
func RespondDataWithETag(ctx *gin.Context, data interface{}) {
	body, err := json.Marshal(gin.H{"status": statusSuccess, "data": data})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	etag := weakETag(body)
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", etagCacheControl)

	if etagListMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// weakETag truncates the digest; collisions only cost a redundant 200.
func weakETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagListMatches applies the weak comparison If-None-Match requires.
func etagListMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	want := opaqueTag(etag)
	for _, candidate := range strings.Split(header, ",") {
		if opaqueTag(candidate) == want {
			return true
		}
	}
	return false
}

func opaqueTag(tag string) string {
	tag = strings.TrimSpace(tag)
	return strings.TrimPrefix(tag, "W/")
}

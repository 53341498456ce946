package routes

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"vidfetch/delivery"
	"vidfetch/failures"
	"vidfetch/logger"
	"vidfetch/models"
	"vidfetch/resolver"
	"vidfetch/success"

	"github.com/google/uuid"
)

// Query parameters of the download endpoint
const (
	VideoURLParam = "videoUrl"
	FormatParam   = "format"
)

// RequestIDHeader carries the per-request journal key back to the caller
const RequestIDHeader = "X-Request-ID"

var errMissingVideoURL = errors.New("video URL is required")

// DownloadHandler serves POST /api/video/download. The whole file is built in
// memory before the first byte of the response is written.
func DownloadHandler(svc *delivery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		started := time.Now()
		w.Header().Set(RequestIDHeader, requestID)

		if r.Method != http.MethodPost {
			logger.Warnf("[%s] invalid method for download endpoint: %s", requestID, r.Method)
			writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		query := r.URL.Query()
		rawURL := query.Get(VideoURLParam)
		format := models.ParseFormat(query.Get(FormatParam))
		logger.Infof("[%s] download request: videoUrl=%q format=%s remoteAddr=%s", requestID, rawURL, format, r.RemoteAddr)

		fail := func(err error) {
			status, body := statusFor(err)
			stage, ok := delivery.StageOf(err)
			if !ok {
				stage = delivery.StageResolving
			}
			if status >= http.StatusInternalServerError {
				logger.Errorf("[%s] download failed at %s: %v", requestID, stage, err)
			} else {
				logger.Warnf("[%s] download rejected at %s: %v", requestID, stage, err)
			}

			journalFailure(failures.Record{
				RequestID: requestID,
				VideoURL:  rawURL,
				Format:    string(format),
				Stage:     stage.String(),
				Kind:      kindOf(err),
				Status:    status,
				Error:     err.Error(),
			})
			writeText(w, status, body)
		}

		if rawURL == "" {
			fail(errMissingVideoURL)
			return
		}

		id, err := resolver.Resolve(rawURL)
		if err != nil {
			fail(err)
			return
		}
		logger.Debugf("[%s] resolved %q to video %s", requestID, rawURL, id)

		file, err := svc.Deliver(r.Context(), id, format)
		if err != nil {
			fail(err)
			return
		}

		h := w.Header()
		h.Set("Content-Type", file.MediaType)
		h.Set("Content-Disposition", contentDisposition(file.FileName))
		h.Set("Content-Length", strconv.Itoa(len(file.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(file.Data); err != nil {
			// headers are already out, so only the journal sees this
			logger.Errorf("[%s] failed to write response body: %v", requestID, err)
			journalFailure(failures.Record{
				RequestID: requestID,
				VideoURL:  rawURL,
				Format:    string(format),
				Stage:     delivery.StageResponding.String(),
				Kind:      "write_failed",
				Status:    http.StatusOK,
				Error:     err.Error(),
			})
			return
		}

		elapsed := time.Since(started)
		logger.Infof("[%s] delivered %s (%d bytes, itag %d) in %v", requestID, file.FileName, len(file.Data), file.Stream.Itag, elapsed)
		journalSuccess(success.Record{
			RequestID: requestID,
			VideoID:   string(id),
			Format:    string(format),
			Itag:      file.Stream.Itag,
			FileName:  file.FileName,
			MediaType: file.MediaType,
			Size:      len(file.Data),
			Elapsed:   elapsed.Round(time.Millisecond).String(),
		})
	}
}

// statusFor maps a pipeline error to the response status and exact body
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errMissingVideoURL):
		return http.StatusBadRequest, "Video URL is required."
	case errors.Is(err, resolver.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid video URL."
	case errors.Is(err, delivery.ErrNoSuitableStream):
		return http.StatusNotFound, "No suitable stream found."
	default:
		return http.StatusInternalServerError, "An error occurred: " + err.Error()
	}
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, errMissingVideoURL):
		return "missing_url"
	case errors.Is(err, resolver.ErrInvalidURL):
		return "invalid_url"
	default:
		return delivery.Kind(err)
	}
}

func contentDisposition(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}

// writeText writes body verbatim, without the newline http.Error appends
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func journalFailure(record failures.Record) {
	if err := failures.Store(record); err != nil {
		logger.Warnf("[%s] failed to journal failure: %v", record.RequestID, err)
	}
}

func journalSuccess(record success.Record) {
	if err := success.Store(record); err != nil {
		logger.Warnf("[%s] failed to journal success: %v", record.RequestID, err)
	}
}

// Package handlers implements the REST endpoints for photo ingestion,
// receipt ingestion, search, chat and reporting.
package handlers

import (
	"io"
	"net/http"

	"homegraph/pkg/common"
	apperrors "homegraph/pkg/errors"

	"go.uber.org/zap"
)

// maxUploadBytes bounds image uploads. Phone photos comfortably fit.
const maxUploadBytes = 20 << 20

// respondError maps an application error onto the standard envelope.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	code := string(apperrors.ErrorTypeInternal)
	message := "internal server error"

	if appErr := apperrors.GetAppError(err); appErr != nil {
		code = string(appErr.Type)
		message = appErr.Message
	}

	if status >= 500 {
		fields := []zap.Field{zap.Error(err)}
		if requestID, ok := common.GetRequestID(r.Context()); ok {
			fields = append(fields, zap.String("requestID", requestID))
		}
		logger.Error("Request failed", fields...)
	}

	common.RespondError(w, status, code, message)
}

// readUpload reads the uploaded image from a multipart form ("file"
// field) or, failing that, the raw request body.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		file, _, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			return io.ReadAll(io.LimitReader(file, maxUploadBytes))
		}
	}
	return io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
}

package user

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"Lumi_V0.1/internal/aiservice"
	"Lumi_V0.1/internal/models"
	"Lumi_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const MsgInvalidPhoto = "Invalid photo data."

type AnalyzeRequest struct {
	PhotoDataURI string `json:"photoDataUri" form:"photoDataUri"`
}

var errBadPhoto = errors.New(MsgInvalidPhoto)

// AnalyzeHandler runs analysis and recommendation on one photo. The photo
// arrives either as a JSON data URI or as a multipart "photo" file.
// A successful analysis is also recorded in the caller's progress history.
func (h *Handler) AnalyzeHandler(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.userStore(c)
	if store == nil {
		return err
	}

	photo, err := h.photoFromRequest(c)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Rejected analysis upload")
		return c.JSON(http.StatusBadRequest, failure(MsgInvalidPhoto))
	}

	result := h.analyzer.AnalyzeSkinAndRecommendProducts(ctx, photo)
	if result.OK() {
		store.AddProgressEntry(ctx, models.NewProgressEntry{
			PhotoDataURI: photo,
			Analysis:     result.Data.Analysis,
		})
	}

	return c.JSON(statusForKind(result.Kind), result)
}

// photoFromRequest returns the photo as a data URI. An empty string means
// no photo was sent; that case is left to the action to report.
func (h *Handler) photoFromRequest(c echo.Context) (string, error) {
	req := c.Request()
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))

	if mediaType == echo.MIMEMultipartForm {
		fh, err := c.FormFile("photo")
		if errors.Is(err, http.ErrMissingFile) {
			return c.FormValue("photoDataUri"), nil
		}
		if err != nil {
			return "", fmt.Errorf("read multipart: %w", err)
		}
		if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
			return "", fmt.Errorf("%w: file is %d bytes", errBadPhoto, fh.Size)
		}

		f, err := fh.Open()
		if err != nil {
			return "", fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		if len(data) == 0 {
			return "", nil
		}

		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			return "", fmt.Errorf("%w: content type %s", errBadPhoto, mimeType)
		}
		return utility.EncodeDataURI(mimeType, data), nil
	}

	var body AnalyzeRequest
	if err := c.Bind(&body); err != nil {
		return "", fmt.Errorf("bind: %w", err)
	}
	if body.PhotoDataURI == "" {
		return "", nil
	}
	if _, err := utility.ParseDataURI(body.PhotoDataURI); err != nil {
		return "", err
	}
	return body.PhotoDataURI, nil
}

func statusForKind(kind aiservice.ErrorKind) int {
	switch kind {
	case aiservice.KindNone:
		return http.StatusOK
	case aiservice.KindValidation:
		return http.StatusBadRequest
	case aiservice.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func failure(msg string) aiservice.ActionResult {
	return aiservice.ActionResult{Error: &msg, Kind: aiservice.KindValidation}
}

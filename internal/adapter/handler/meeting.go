package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	dto "github.com/johnquangdev/meeting-insights/internal/adapter/dto/meeting"
	meetinguse "github.com/johnquangdev/meeting-insights/internal/usecase/meeting"
)

// MeetingController handles the meeting API surface
type MeetingController struct {
	svc    *meetinguse.Service
	logger *zap.Logger
}

// NewMeetingController creates a new meeting controller
func NewMeetingController(svc *meetinguse.Service, logger *zap.Logger) *MeetingController {
	return &MeetingController{svc: svc, logger: logger}
}

// Upload accepts a recording and enqueues it for processing
func (mc *MeetingController) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(mc.logger, c, errors.ErrInvalidPayload.WithDetail("multipart field 'file' is required"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(mc.logger, c, errors.ErrInvalidPayload.WithRaw(err))
	}
	defer src.Close()

	meeting, err := mc.svc.Submit(c.Request().Context(), fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusAccepted, dto.ToMeetingResponse(meeting))
}

// Status returns the processing state of a meeting
func (mc *MeetingController) Status(c echo.Context) error {
	id, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	status, err := mc.svc.Status(c.Request().Context(), id)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, dto.StatusResponse{
		ID:     id.String(),
		Status: string(status),
	})
}

// Details returns the full processed record
func (mc *MeetingController) Details(c echo.Context) error {
	id, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	meeting, err := mc.svc.Details(c.Request().Context(), id)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, dto.ToDetailsResponse(meeting))
}

// List returns a page of meetings, newest first
func (mc *MeetingController) List(c echo.Context) error {
	var req dto.ListRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(mc.logger, c, errors.ErrInvalidPayload.WithRaw(err))
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	meetings, err := mc.svc.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	resp := dto.ListResponse{
		Meetings: make([]dto.MeetingResponse, 0, len(meetings)),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	for i := range meetings {
		resp.Meetings = append(resp.Meetings, dto.ToMeetingResponse(&meetings[i]))
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, resp)
}

// GraphContext returns the denormalized per-meeting view
func (mc *MeetingController) GraphContext(c echo.Context) error {
	id, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	ctx, err := mc.svc.GraphContext(c.Request().Context(), id)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, dto.ToGraphContextResponse(ctx))
}

// Chat answers a question about a meeting
func (mc *MeetingController) Chat(c echo.Context) error {
	id, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(mc.logger, c, errors.ErrInvalidPayload.WithRaw(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(mc.logger, c, errors.ErrInvalidPayload.WithRaw(err))
	}

	history := make([]meetinguse.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, meetinguse.ChatTurn{Role: turn.Role, Content: turn.Content})
	}

	reply, err := mc.svc.Chat(c.Request().Context(), id, req.Message, history)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, dto.ChatResponse{
		MeetingID: id.String(),
		Reply:     reply,
	})
}

// Search runs a keyword search across processed meetings
func (mc *MeetingController) Search(c echo.Context) error {
	query := c.QueryParam("query")
	topK := 0
	if raw := c.QueryParam("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return HandleError(mc.logger, c, errors.ErrInvalidPayload.WithDetail("top_k must be an integer"))
		}
		topK = parsed
	}

	hits, err := mc.svc.Search(c.Request().Context(), query, topK)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, dto.ToSearchResponse(query, hits))
}

// Export renders a markdown report and returns a download URL
func (mc *MeetingController) Export(c echo.Context) error {
	id, err := parseMeetingID(c)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	result, err := mc.svc.ExportReport(c.Request().Context(), id)
	if err != nil {
		return HandleError(mc.logger, c, err)
	}

	return HandleSuccess(mc.logger, c, http.StatusOK, dto.ExportResponse{
		MeetingID: id.String(),
		URL:       result.URL,
		Content:   result.Content,
	})
}

func parseMeetingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidPayload.WithDetail("meeting id must be a UUID")
	}
	return id, nil
}

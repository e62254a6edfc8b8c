package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/internal/realtime"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

type Services struct {
	Nights       *usecase.NightService
	CheckIns     *usecase.CheckInService
	Partnerships *usecase.PartnershipService
	Matches      *usecase.MatchService
	Scores       *usecase.ScoreService
}

type Handler struct {
	nightService       *usecase.NightService
	checkInService     *usecase.CheckInService
	partnershipService *usecase.PartnershipService
	matchService       *usecase.MatchService
	scoreService       *usecase.ScoreService
	realtime           *realtime.WebsocketServer
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(services Services, realtimeServer *realtime.WebsocketServer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		nightService:       services.Nights,
		checkInService:     services.CheckIns,
		partnershipService: services.Partnerships,
		matchService:       services.Matches,
		scoreService:       services.Scores,
		realtime:           realtimeServer,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "Healthz")
	defer span.End()

	out := wire.Health{Status: "ok"}
	if h.realtime != nil {
		stats, err := h.realtime.Stats(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "realtime stats unavailable", "error", err)
			out.Status = "degraded"
		}
		out.RealtimeRooms = stats.Rooms
		out.RealtimeSubscribers = stats.Subscribers
		out.RealtimeDropped = stats.Dropped
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func nightRefFromPath(r *http.Request) usecase.NightRef {
	return usecase.NightRef{
		LeagueID: r.PathValue("leagueId"),
		NightID:  r.PathValue("nightId"),
	}
}

// decodeRequest reads a strict JSON body into payload and validates it.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

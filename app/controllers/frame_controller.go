package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/VibesDrop/app/repository"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/farcaster"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics/counter"
)

const frameRequestTimeout = 20 * time.Second

// MembershipChecker answers whether a user follows the airdrop channel.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, fid int64) (bool, error)
}

// frameActionRequest is the body frame clients POST on every button press.
// untrustedData is unsigned; only its fid is looked at, and only for logging.
type frameActionRequest struct {
	UntrustedData struct {
		FID         int64  `json:"fid"`
		URL         string `json:"url"`
		MessageHash string `json:"messageHash"`
		Timestamp   int64  `json:"timestamp"`
		Network     int    `json:"network"`
		ButtonIndex int    `json:"buttonIndex"`
		InputText   string `json:"inputText"`
		CastID      struct {
			FID  int64  `json:"fid"`
			Hash string `json:"hash"`
		} `json:"castId"`
	} `json:"untrustedData"`
	TrustedData struct {
		MessageBytes string `json:"messageBytes"`
	} `json:"trustedData"`
}

// FrameController drives the opt-in frame.
type FrameController struct {
	verifier farcaster.Verifier
	members  MembershipChecker
	optIns   repository.OptInRepository
	builder  *frame.Builder
	views    *counter.Counter
}

// NewFrameController creates the frame controller. views may be nil.
func NewFrameController(verifier farcaster.Verifier, members MembershipChecker, optIns repository.OptInRepository, builder *frame.Builder, views *counter.Counter) *FrameController {
	return &FrameController{
		verifier: verifier,
		members:  members,
		optIns:   optIns,
		builder:  builder,
		views:    views,
	}
}

// HandleFrameAction processes one signed frame interaction and answers with
// the next screen.
func (fc *FrameController) HandleFrameAction(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Frame] Panic while processing frame request: %v", r)
			err = fc.respond(c, frame.ScreenError)
		}
	}()

	var req frameActionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.TrustedData.MessageBytes == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: No trusted data found"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), frameRequestTimeout)
	defer cancel()

	action, err := fc.verifier.VerifySignedInteraction(ctx, req.TrustedData.MessageBytes)
	if err != nil {
		switch {
		case errors.Is(err, farcaster.ErrHubUnavailable):
			metrics.RecordUpstreamError("hub")
			log.Errorf("[Frame] Hub unavailable, cannot verify message: %v", err)
		default:
			log.Warnf("[Frame] Rejected frame message: %v", err)
		}
		return fc.respond(c, frame.ScreenError)
	}

	fid := action.FID
	if req.UntrustedData.FID != 0 && req.UntrustedData.FID != fid {
		log.Warnf("[Frame] untrustedData fid %d does not match signed fid %d", req.UntrustedData.FID, fid)
	}

	in := frame.Input{
		AlreadyOptedIn: fc.optIns.HasOptedIn(ctx, fid),
		ButtonIndex:    action.ButtonIndex,
		InputText:      action.InputText,
	}

	decision := frame.Decide(ctx, in, frame.Hooks{
		IsChannelMember: func(ctx context.Context) (bool, error) {
			return fc.members.IsChannelMember(ctx, fid)
		},
		RecordOptIn: func(ctx context.Context, address string) bool {
			ok := fc.optIns.RecordOptIn(ctx, fid, address)
			if ok {
				metrics.RecordOptIn("recorded")
			} else {
				metrics.RecordOptIn("failed")
			}
			return ok
		},
	})
	if decision.Err != nil {
		metrics.RecordUpstreamError("neynar")
		log.Errorf("[Frame] Membership check failed for fid %d: %v", fid, decision.Err)
	}

	log.Infof("[Frame] fid=%d button=%d screen=%s", fid, in.ButtonIndex, decision.Screen)
	return fc.respond(c, decision.Screen)
}

func (fc *FrameController) respond(c *fiber.Ctx, screen frame.Screen) error {
	metrics.RecordScreen(string(screen))
	if fc.views != nil {
		if err := fc.views.AddScreenView(c.UserContext(), string(screen)); err != nil {
			log.Warnf("[Frame] Could not count screen view: %v", err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(fc.builder.Build(screen))
}

package discord

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/scrim-queue-bot/internal/app/service"
	"github.com/jose-valero/scrim-queue-bot/internal/infra/storage"
)

type Router struct {
	s       *discordgo.Session
	guildID string

	adminRoleIDs []string
	clickLimiter *userLimiter

	channels *service.ChannelService
	queue    *service.QueueService
	drafts   *service.DraftService
	votes    *service.VoteService
	matches  *service.MatchService
	bans     *service.BanService
	monitor  *service.InactivityService

	uiRepo *storage.UIRepo

	refreshMu     sync.Mutex
	refreshTimers map[string]*time.Timer
}

type Services struct {
	Channels *service.ChannelService
	Queue    *service.QueueService
	Drafts   *service.DraftService
	Votes    *service.VoteService
	Matches  *service.MatchService
	Bans     *service.BanService
	Monitor  *service.InactivityService
}

func NewRouter(s *discordgo.Session, guildID string, adminRoleIDs []string, svcs Services, uiRepo *storage.UIRepo) *Router {
	return &Router{
		s:             s,
		guildID:       guildID,
		adminRoleIDs:  adminRoleIDs,
		clickLimiter:  newUserLimiter(1 * time.Second),
		channels:      svcs.Channels,
		queue:         svcs.Queue,
		drafts:        svcs.Drafts,
		votes:         svcs.Votes,
		matches:       svcs.Matches,
		bans:          svcs.Bans,
		monitor:       svcs.Monitor,
		uiRepo:        uiRepo,
		refreshTimers: map[string]*time.Timer{},
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})

	// Cualquier mensaje en un canal registrado cuenta como actividad
	// para el monitor de inactividad.
	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		r.monitor.Touch(m.Author.ID)
	})
}

// ctxFor acota el trabajo de una interacción; discord corta el followup a
// los 15 min pero nosotros no queremos colgar tanto.
func ctxFor() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 12*time.Second)
}

func logErr(where string, err error) {
	if err != nil {
		log.Printf("⚠️ %s: %v", where, err)
	}
}

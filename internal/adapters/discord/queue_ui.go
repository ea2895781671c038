package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	uiDebounce   = 80 * time.Millisecond
	ctxRenderMax = 900 * time.Millisecond
)

// Publica (o reposta) el embed de la cola en el canal y guarda el message id
// para poder editarlo después.
func (r *Router) publishQueueUI(ctx context.Context, channelID string) error {
	embed, comps, err := r.renderQueueEmbed(channelID)
	if err != nil {
		return err
	}
	msg, err := r.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{comps},
	})
	if err != nil {
		return err
	}
	return r.uiRepo.Upsert(ctx, channelID, msg.ID)
}

// Debounce + re-render + edit. Cada canal tiene su propio timer: clicks
// seguidos colapsan en un solo edit.
func (r *Router) refreshQueueUI(channelID string) {
	r.refreshMu.Lock()
	if t, ok := r.refreshTimers[channelID]; ok {
		t.Stop()
	}
	r.refreshTimers[channelID] = time.AfterFunc(uiDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), ctxRenderMax)
		defer cancel()

		ui, err := r.uiRepo.Get(ctx, channelID)
		if err != nil || ui.QueueMessageID == "" {
			return
		}
		embed, comps, err := r.renderQueueEmbed(channelID)
		if err != nil {
			log.Printf("[ui.refresh] render %s: %v", channelID, err)
			return
		}
		em := []*discordgo.MessageEmbed{embed}
		cc := []discordgo.MessageComponent{comps}
		if _, err := r.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         ui.QueueMessageID,
			Embeds:     &em,
			Components: &cc,
		}); err != nil {
			log.Printf("[ui.refresh] edit %s: %v", channelID, err)
		}
	})
	r.refreshMu.Unlock()
}

func (r *Router) renderQueueEmbed(channelID string) (*discordgo.MessageEmbed, discordgo.MessageComponent, error) {
	users, err := r.queue.List(channelID)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := r.channels.Config(channelID)
	if err != nil {
		return nil, nil, err
	}

	lines := "Nadie en cola."
	if len(users) > 0 {
		var b strings.Builder
		for i, u := range users {
			fmt.Fprintf(&b, "%d) <@%s>\n", i+1, u)
		}
		lines = b.String()
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Queue — %d/%d", len(users), cfg.Capacity),
		Description: lines,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	comps := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.PrimaryButton,
				Label:    "La llevo",
				CustomID: "queue_join",
				Emoji:    &discordgo.ComponentEmoji{Name: "🌕"},
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Chau",
				CustomID: "queue_leave",
				Emoji:    &discordgo.ComponentEmoji{Name: "👋"},
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Admin",
				CustomID: "admin_panel",
				Emoji:    &discordgo.ComponentEmoji{Name: "👮"},
			},
		},
	}
	return embed, comps, nil
}

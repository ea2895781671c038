package discord

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/scrim-queue-bot/internal/app/service"
)

// Notifier es la salida del bot hacia los canales: mensajes de draft,
// prompts de votación con botones y DMs del arranque de partida.
type Notifier struct {
	s *discordgo.Session
}

func NewNotifier(s *discordgo.Session) *Notifier { return &Notifier{s: s} }

func (n *Notifier) Notify(ctx context.Context, channelID, content string) error {
	_, err := n.s.ChannelMessageSend(channelID, content)
	return err
}

func (n *Notifier) NotifyPayload(ctx context.Context, channelID string, p service.Payload) error {
	_, err := n.s.ChannelMessageSendEmbed(channelID, payloadEmbed(p))
	return err
}

// NotifyVote publica el prompt con un botón por opción. Los custom ids
// llevan etapa y opción, el dispatcher de components los parsea.
func (n *Notifier) NotifyVote(ctx context.Context, channelID, stage, content string, options []string) error {
	buttons := make([]discordgo.MessageComponent, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, discordgo.Button{
			Style:    discordgo.PrimaryButton,
			Label:    opt,
			CustomID: "vote:" + stage + ":" + opt,
		})
	}
	_, err := n.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content,
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}},
	})
	return err
}

// Direct manda un DM best-effort: si el usuario los tiene cerrados, solo
// lo logueamos.
func (n *Notifier) Direct(ctx context.Context, userID string, p service.Payload) {
	dm, err := n.s.UserChannelCreate(userID)
	if err != nil {
		log.Printf("⚠️ dm channel for %s: %v", userID, err)
		return
	}
	if _, err := n.s.ChannelMessageSendEmbed(dm.ID, payloadEmbed(p)); err != nil {
		log.Printf("⚠️ dm to %s: %v", userID, err)
	}
}

func payloadEmbed(p service.Payload) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(p.Fields))
	for _, f := range p.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}
	return &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Body,
		Fields:      fields,
	}
}

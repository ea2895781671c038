package discord

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in component %s: %v", data.CustomID, rec)
		}
	}()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := ctxFor()
	defer cancel()

	channelID := ic.ChannelID
	userID := ic.Member.User.ID

	// botones de votación: "vote:<stage>:<option>". La etapa viaja en el
	// custom id para que un botón viejo no vote en una etapa posterior.
	if opt, ok := strings.CutPrefix(data.CustomID, "vote:"); ok {
		stage, choice, found := strings.Cut(opt, ":")
		if !found {
			ReplyEphemeral(s, ic, "⚠️ Bad vote button.")
			return
		}
		if err := r.votes.Cast(ctx, channelID, userID, stage, choice); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🗳️ Vote recorded: **%s**", choice))
		return
	}

	// paginación del leaderboard: "lb:<page>"
	if raw, ok := strings.CutPrefix(data.CustomID, "lb:"); ok {
		page, err := strconv.Atoi(raw)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ Bad page button.")
			return
		}
		entries := r.matches.Leaderboard()
		if len(entries) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ Nobody has ELO yet.")
			return
		}
		embed, rows := leaderboardPage(entries, page)
		if _, err := s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: rows,
		}); err != nil {
			logErr("leaderboard.page", err)
		}
		return
	}

	switch data.CustomID {

	case "queue_join":
		stop := step("component.queue_join.total")
		defer stop()
		if !r.clickLimiter.Allow(userID) {
			ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
			return
		}
		res, err := r.queue.Join(ctx, channelID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if res.DraftStarted {
			ReplyEphemeral(s, ic, "✅ Queue filled! Starting the draft...")
		} else {
			ReplyEphemeral(s, ic, fmt.Sprintf("✅ You're in! (%d/%d)", res.Position, res.Capacity))
		}
		go r.refreshQueueUI(channelID)

	case "queue_leave":
		if !r.clickLimiter.Allow(userID) {
			ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
			return
		}
		remaining, err := r.queue.Leave(ctx, channelID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("👋 You left the queue. (%d left)", remaining))
		go r.refreshQueueUI(channelID)

	case "kick_select":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		if len(data.Values) == 0 {
			ReplyEphemeral(s, ic, "⚠️ Selección inválida.")
			return
		}
		uid := strings.TrimPrefix(data.Values[0], "uid:")
		if _, err := r.queue.ForceLeave(ctx, channelID, uid); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Jugador kickeado.")
		go r.refreshQueueUI(channelID)

	case "admin_panel":
		if !r.clickLimiter.Allow(userID) {
			ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
			return
		}
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		users, err := r.queue.List(channelID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if len(users) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ La cola está vacía.")
			return
		}
		opts := make([]discordgo.SelectMenuOption, 0, len(users))
		for i, uid := range users {
			opts = append(opts, discordgo.SelectMenuOption{
				Label:       fmt.Sprintf("%02d) %s", i+1, uid),
				Value:       "uid:" + uid,
				Description: uid,
			})
		}
		row := discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "kick_select",
					Placeholder: "Selecciona a quién kickear",
					Options:     opts,
				},
			},
		}
		if _, err := s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
			Content:    "Elige un jugador para **kickear**:",
			Components: []discordgo.MessageComponent{row},
		}); err != nil {
			ReplyEphemeral(s, ic, "⚠️ No pude mostrar el panel admin: "+err.Error())
		}
	}
}

// logica de InteractionApplicationCommand de discordgo
// aqui solo manejamos la interaccion del usuario y despachamos a los servicios
package discord

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/scrim-queue-bot/internal/app/service"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	log.Printf("cmd: /%s by=%s channel=%s", cmd.Name, ic.Member.User.ID, ic.ChannelID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in cmd /%s: %v", cmd.Name, rec)
			ReplyEphemeral(s, ic, "❌ Ocurrió un error inesperado procesando el comando.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := ctxFor()
	defer cancel()

	channelID := ic.ChannelID
	userID := ic.Member.User.ID

	switch cmd.Name {

	case "queue":
		sub, _ := subcmdName(ic)
		switch sub {
		case "join":
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
		case "leave":
			remaining, err := r.queue.Leave(ctx, channelID, userID)
			if err != nil {
				ReplyEphemeral(s, ic, errMsg(err))
				return
			}
			ReplyEphemeral(s, ic, fmt.Sprintf("👋 You left the queue. (%d left)", remaining))
			go r.refreshQueueUI(channelID)
		case "status":
			r.replyQueueStatus(s, ic, channelID)
		default:
			ReplyEphemeral(s, ic, "Usa `/queue join`, `/queue leave` o `/queue status`.")
		}

	case "pick":
		target, _ := optUser(ic, "player")
		res, err := r.drafts.Pick(ctx, channelID, userID, target)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if res.Completed {
			ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> picked.", res.Target))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> picked. Next up: <@%s>", res.Target, res.NextTurn))

	case "teams":
		matchID, _ := optStr(ic, "match")
		teams, id, err := r.drafts.Teams(channelID, matchID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "", teamsEmbed(id, teams))

	case "games":
		var b strings.Builder
		b.WriteString("🎮 **Gamemodes & Maps**\n")
		for _, gm := range domain.Gamemodes {
			fmt.Fprintf(&b, "**%s**: %s\n", gm, strings.Join(domain.MapsFor(gm), ", "))
		}
		ReplyEphemeral(s, ic, b.String())

	case "balance":
		target, ok := optUser(ic, "player")
		if !ok {
			target = userID
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("💰 <@%s> has **%d** ELO.", target, r.matches.ScoreOf(target)))

	case "leaderboard":
		entries := r.matches.Leaderboard()
		if len(entries) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ Nobody has ELO yet.")
			return
		}
		embed, rows := leaderboardPage(entries, 0)
		if _, err := s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: rows,
		}); err != nil {
			logErr("leaderboard", err)
		}

	// ----- admin -----

	case "winner":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		captain, ok := optUser(ic, "captain")
		if !ok {
			ReplyEphemeral(s, ic, "⚠️ Falta el capitán ganador.")
			return
		}
		var res service.FinishResult
		var err error
		if matchID, ok := optStr(ic, "match"); ok && matchID != "" {
			res, err = r.matches.Finish(ctx, matchID, captain)
		} else {
			res, err = r.matches.FinishByChannel(ctx, channelID, captain)
		}
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Result recorded.")
		logErr("announce winner", r.announce(channelID, fmt.Sprintf(
			"🏆 **Team <@%s> wins match `%s`!** (+%d ELO each, losers -%d)",
			captain, res.MatchID, res.WinScore, domain.LossPenalty)))

	case "register":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		if err := r.channels.Register(ctx, channelID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Channel registered as a queue channel.")
		logErr("publish ui", r.publishQueueUI(ctx, channelID))

	case "unregister":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		if err := r.channels.Unregister(ctx, channelID); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		logErr("delete ui row", r.uiRepo.Delete(ctx, channelID))
		ReplyEphemeral(s, ic, "✅ Channel unregistered.")

	case "setup":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		capacity, _ := optInt(ic, "capacity")
		if err := r.channels.SetCapacity(ctx, channelID, capacity); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ Queue size set to **%d**.", capacity))
		go r.refreshQueueUI(channelID)

	case "settimeout":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		seconds, _ := optInt(ic, "seconds")
		if err := r.channels.SetTimeout(ctx, channelID, seconds); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ Inactivity timeout set to **%ds**.", seconds))

	case "queueban":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		target, _ := optUser(ic, "player")
		minutes, _ := optInt(ic, "minutes")
		res, err := r.bans.Toggle(ctx, target, minutes)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if res.Banned {
			ReplyEphemeral(s, ic, fmt.Sprintf("🔨 <@%s> banned from queues for **%d min**.", target, minutes))
		} else {
			ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> unbanned.", target))
		}
		go r.refreshQueueUI(channelID)

	case "elo":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		target, _ := optUser(ic, "player")
		action, _ := optStr(ic, "action")
		amount, _ := optInt(ic, "amount")
		total, err := r.matches.AdjustScore(ctx, target, action, amount)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> now has **%d** ELO.", target, total))

	case "setwinelo":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		amount, _ := optInt(ic, "amount")
		if err := r.matches.SetWinScore(ctx, amount); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ Win ELO set to **%d**.", amount))

	case "resetelo":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		if err := r.matches.ResetAllScores(ctx); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Everyone's ELO reset to 0.")

	case "sub":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		matchID, _ := optStr(ic, "match")
		out, _ := optUser(ic, "out")
		in, _ := optUser(ic, "in")
		if err := r.drafts.Substitute(ctx, matchID, out, in); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🔄 <@%s> subbed in for <@%s> in `%s`.", in, out, matchID))

	case "endgame":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		matchID, err := r.matches.EndMatch(ctx, channelID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🛑 Match `%s` ended without scoring.", matchID))

	case "forcejoin":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		target, _ := optUser(ic, "player")
		res, err := r.queue.ForceJoin(ctx, channelID, target)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		if res.DraftStarted {
			ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> added. Queue filled, starting the draft...", target))
		} else {
			ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> added to the queue. (%d/%d)", target, res.Position, res.Capacity))
		}
		go r.refreshQueueUI(channelID)

	case "forceleave":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		target, _ := optUser(ic, "player")
		if _, err := r.queue.ForceLeave(ctx, channelID, target); err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ <@%s> removed from the queue.", target))
		go r.refreshQueueUI(channelID)

	case "forcestart":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		res, err := r.drafts.ForceStart(ctx, channelID)
		if err != nil {
			ReplyEphemeral(s, ic, errMsg(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("⚡ Match `%s` force-started.", res.MatchID))
		go r.refreshQueueUI(channelID)
	}
}

func (r *Router) replyQueueStatus(s *discordgo.Session, ic *discordgo.InteractionCreate, channelID string) {
	users, err := r.queue.List(channelID)
	if err != nil {
		ReplyEphemeral(s, ic, errMsg(err))
		return
	}
	if len(users) == 0 {
		ReplyEphemeral(s, ic, "ℹ️ The queue is empty.")
		return
	}
	var b strings.Builder
	for i, u := range users {
		fmt.Fprintf(&b, "%d) <@%s>\n", i+1, u)
	}
	ReplyEphemeral(s, ic, "", &discordgo.MessageEmbed{Title: "📋 Queue", Description: b.String()})
}

func teamsEmbed(matchID string, teams map[string][]string) *discordgo.MessageEmbed {
	captains := make([]string, 0, len(teams))
	for c := range teams {
		captains = append(captains, c)
	}
	sort.Strings(captains)

	fields := make([]*discordgo.MessageEmbedField, 0, len(teams))
	for i, captain := range captains {
		members := teams[captain]
		// los snapshots de partida ya traen al capitán adelante
		if len(members) == 0 || members[0] != captain {
			members = append([]string{captain}, members...)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Team %d", i+1),
			Value: mentions(members),
		})
	}
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("⚔️ Teams — `%s`", matchID),
		Fields: fields,
	}
}

const leaderboardPageSize = 10

// leaderboardPage arma la página pedida con botones prev/next ("lb:<page>").
func leaderboardPage(entries []service.LeaderboardEntry, page int) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	last := (len(entries) - 1) / leaderboardPageSize
	if page < 0 {
		page = 0
	}
	if page > last {
		page = last
	}

	start := page * leaderboardPageSize
	end := start + leaderboardPageSize
	if end > len(entries) {
		end = len(entries)
	}

	var b strings.Builder
	for i, e := range entries[start:end] {
		fmt.Fprintf(&b, "%d) <@%s> — **%d**\n", start+i+1, e.UserID, e.Score)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🏆 ELO Leaderboard",
		Description: b.String(),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Página %d/%d", page+1, last+1)},
	}

	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "⬅️",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("lb:%d", page-1),
				Disabled: page == 0,
			},
			discordgo.Button{
				Label:    "➡️",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("lb:%d", page+1),
				Disabled: page == last,
			},
		},
	}
	return embed, []discordgo.MessageComponent{row}
}

func mentions(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "<@" + id + ">"
	}
	return strings.Join(out, ", ")
}

func (r *Router) announce(channelID, content string) error {
	_, err := r.s.ChannelMessageSend(channelID, content)
	return err
}

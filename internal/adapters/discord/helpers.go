package discord

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/scrim-queue-bot/internal/app/service"
)

func fmtRemain(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func optStr(ic *discordgo.InteractionCreate, name string) (string, bool) {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue(), true
		}
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				if so.Name == name && so.Type == discordgo.ApplicationCommandOptionString {
					return so.StringValue(), true
				}
			}
		}
	}
	return "", false
}

func optInt(ic *discordgo.InteractionCreate, name string) (int, bool) {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionInteger {
			return int(o.IntValue()), true
		}
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				if so.Name == name && so.Type == discordgo.ApplicationCommandOptionInteger {
					return int(so.IntValue()), true
				}
			}
		}
	}
	return 0, false
}

// optUser devuelve el ID del usuario de una opción tipo User.
func optUser(ic *discordgo.InteractionCreate, name string) (string, bool) {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionUser {
			if u := o.UserValue(nil); u != nil {
				return u.ID, true
			}
		}
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				if so.Name == name && so.Type == discordgo.ApplicationCommandOptionUser {
					if u := so.UserValue(nil); u != nil {
						return u.ID, true
					}
				}
			}
		}
	}
	return "", false
}

func subcmdName(ic *discordgo.InteractionCreate) (string, bool) {
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			return o.Name, true
		}
	}
	return "", false
}

// errMsg traduce errores de servicio al mensaje que ve el usuario.
func errMsg(err error) string {
	var aq *service.AlreadyQueuedError
	if errors.As(err, &aq) {
		if aq.Same {
			return "⚠️ You're already in this queue!"
		}
		return fmt.Sprintf("⚠️ You're already queued in <#%s>. Leave that queue first.", aq.ChannelID)
	}
	var bn *service.BannedError
	if errors.As(err, &bn) {
		return fmt.Sprintf("🔨 You're banned from queues for another **%s**.", fmtRemain(bn.Remaining))
	}

	switch {
	case errors.Is(err, service.ErrChannelNotRegistered):
		return "⚠️ This channel isn't registered. An admin can run `/register`."
	case errors.Is(err, service.ErrNotQueued):
		return "⚠️ You're not in this queue."
	case errors.Is(err, service.ErrQueueEmpty):
		return "⚠️ The queue is empty."
	case errors.Is(err, service.ErrNoActiveDraft):
		return "⚠️ There's no active draft here."
	case errors.Is(err, service.ErrNotYourTurn):
		return "⚠️ It's not your turn to pick!"
	case errors.Is(err, service.ErrPlayerUnavailable):
		return "⚠️ That player isn't available to pick."
	case errors.Is(err, service.ErrNoActiveVote):
		return "⚠️ There's no vote running."
	case errors.Is(err, service.ErrNotEligible):
		return "⚠️ Only match participants can vote."
	case errors.Is(err, service.ErrAlreadyVoted):
		return "⚠️ You already voted!"
	case errors.Is(err, service.ErrUnknownOption):
		return "⚠️ That's not one of the options."
	case errors.Is(err, service.ErrMatchNotFound):
		return "⚠️ No match with that ID."
	case errors.Is(err, service.ErrNoActiveMatch):
		return "⚠️ There's no active match in this channel."
	case errors.Is(err, service.ErrAlreadyFinished):
		return "⚠️ That match was already reported."
	case errors.Is(err, service.ErrMatchNotOpen):
		return "⚠️ That match is already finished."
	case errors.Is(err, service.ErrNotACaptain):
		return "⚠️ Only a team captain can report the winner."
	case errors.Is(err, service.ErrUserNotInMatch):
		return "⚠️ That player isn't in the match."
	case errors.Is(err, service.ErrUserAlreadyInMatch):
		return "⚠️ That player is already in the match."
	case errors.Is(err, service.ErrBadCapacity):
		return "⚠️ Capacity must be an even number between 2 and 12."
	case errors.Is(err, service.ErrBadTimeout):
		return "⚠️ Timeout must be at least 60 seconds."
	case errors.Is(err, service.ErrBadAmount):
		return "⚠️ Amount must be a non-negative number."
	case errors.Is(err, service.ErrBadAction):
		return "⚠️ Action must be `add`, `subtract` or `set`."
	}
	return "⚠️ Something went wrong: " + err.Error()
}

package discord

import "github.com/bwmarrin/discordgo"

// requireAdminOrRoles deja pasar al owner del guild, a cualquiera con el bit
// Administrator, o a quien tenga alguno de los roles configurados en
// ADMIN_ROLE_IDS. Si no, responde el rechazo y devuelve false.
func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil || ic.Member.User == nil {
		return false
	}

	if g, _ := s.State.Guild(ic.GuildID); g != nil && ic.Member.User.ID == g.OwnerID {
		return true
	}

	roles, _ := s.GuildRoles(ic.GuildID)
	byID := make(map[string]*discordgo.Role, len(roles))
	for _, ro := range roles {
		byID[ro.ID] = ro
	}

	var perms int64
	for _, rid := range ic.Member.Roles {
		if ro, ok := byID[rid]; ok {
			perms |= ro.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if len(r.adminRoleIDs) > 0 {
		has := make(map[string]struct{}, len(ic.Member.Roles))
		for _, rid := range ic.Member.Roles {
			has[rid] = struct{}{}
		}
		for _, want := range r.adminRoleIDs {
			if _, ok := has[want]; ok {
				return true
			}
		}
	}

	ReplyEphemeral(s, ic, "🔒 No tienes permisos para esta acción.")
	return false
}

package discord

import "github.com/bwmarrin/discordgo"

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "queue",
		Description: "Gestiona la cola del canal",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "join", Description: "Unirte a la cola"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "leave", Description: "Salir de la cola"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Ver la cola"},
		},
	},
	{
		Name:        "pick",
		Description: "Draft: elegí un jugador para tu equipo (capitanes)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "player",
			Description: "Jugador disponible",
			Required:    true,
		}},
	},
	{
		Name:        "teams",
		Description: "Muestra los equipos del draft o de una partida",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "match",
			Description: "Match ID (opcional)",
		}},
	},
	{
		Name:        "games",
		Description: "Lista los gamemodes y sus mapas",
	},
	{
		Name:        "balance",
		Description: "Muestra el ELO de un jugador",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "player",
			Description: "Jugador (por defecto vos)",
		}},
	},
	{
		Name:        "leaderboard",
		Description: "Tabla de ELO del servidor",
	},
	{
		Name:        "winner",
		Description: "Declara al equipo del capitán como ganador (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "captain",
				Description: "Capitán del equipo ganador",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "match",
				Description: "Match ID (por defecto la partida activa del canal)",
			},
		},
	},
	{
		Name:        "register",
		Description: "Registra este canal como canal de colas (admins)",
	},
	{
		Name:        "unregister",
		Description: "Da de baja este canal (admins)",
	},
	{
		Name:        "setup",
		Description: "Configura el tamaño de la cola (admins)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "capacity",
			Description: "Par, entre 2 y 12",
			Required:    true,
		}},
	},
	{
		Name:        "settimeout",
		Description: "Configura el timeout de inactividad en segundos (admins)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "seconds",
			Description: "Mínimo 60",
			Required:    true,
		}},
	},
	{
		Name:        "queueban",
		Description: "Banea/desbanea de las colas (admins, toggle)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Jugador", Required: true},
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "Duración en minutos", Required: true},
		},
	},
	{
		Name:        "elo",
		Description: "Ajusta el ELO de un jugador (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Jugador", Required: true},
			{
				Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "add / subtract / set", Required: true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "add", Value: "add"},
					{Name: "subtract", Value: "subtract"},
					{Name: "set", Value: "set"},
				},
			},
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Cantidad (>= 0)", Required: true},
		},
	},
	{
		Name:        "setwinelo",
		Description: "Configura el ELO por victoria (admins)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Puntos por ganar",
			Required:    true,
		}},
	},
	{
		Name:        "resetelo",
		Description: "Resetea el ELO de todos a cero (admins)",
	},
	{
		Name:        "sub",
		Description: "Sustituye un jugador de una partida (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "match", Description: "Match ID", Required: true},
			{Type: discordgo.ApplicationCommandOptionUser, Name: "out", Description: "Jugador que sale", Required: true},
			{Type: discordgo.ApplicationCommandOptionUser, Name: "in", Description: "Jugador que entra", Required: true},
		},
	},
	{
		Name:        "endgame",
		Description: "Cierra la partida activa sin repartir puntos (admins)",
	},
	{
		Name:        "forcejoin",
		Description: "Mete un jugador a la cola (admins)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Jugador", Required: true,
		}},
	},
	{
		Name:        "forceleave",
		Description: "Saca un jugador de la cola (admins)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Jugador", Required: true,
		}},
	},
	{
		Name:        "forcestart",
		Description: "Arranca ya con equipos aleatorios (admins)",
	},
}

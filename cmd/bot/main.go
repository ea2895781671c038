package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordrouter "github.com/jose-valero/scrim-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/scrim-queue-bot/internal/app/service"
	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/infra/config"
	"github.com/jose-valero/scrim-queue-bot/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	snapRepo := storage.NewSnapshotRepo(db)
	uiRepo := storage.NewUIRepo(db)

	// Estado en memoria, rehidratado del último snapshot
	store := state.NewStore()
	snap, err := snapRepo.Load(context.Background())
	if err != nil {
		log.Fatal("load snapshot:", err)
	}
	store.Restore(snap)
	log.Printf("✅ estado restaurado: %d canales, %d partidas", len(snap.Channels), len(snap.Matches))

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	notify := discordrouter.NewNotifier(s)

	// Services (en orden de dependencia: vote → draft → queue)
	matchSvc := service.NewMatchService(store, snapRepo, notify)
	voteSvc := service.NewVoteService(store, snapRepo, notify)
	draftSvc := service.NewDraftService(store, snapRepo, notify, voteSvc)
	queueSvc := service.NewQueueService(store, snapRepo, notify, draftSvc)
	banSvc := service.NewBanService(store, snapRepo, notify)
	monitorSvc := service.NewInactivityService(store, snapRepo, notify)
	channelSvc := service.NewChannelService(store, snapRepo, monitorSvc)

	// Router
	r := discordrouter.NewRouter(s, cfg.DiscordGuild, cfg.AdminRoleIDs, discordrouter.Services{
		Channels: channelSvc,
		Queue:    queueSvc,
		Drafts:   draftSvc,
		Votes:    voteSvc,
		Matches:  matchSvc,
		Bans:     banSvc,
		Monitor:  monitorSvc,
	}, uiRepo)
	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	r.Handlers()
	log.Printf("✅ comandos registrados en guild %s", cfg.DiscordGuild)

	// Un monitor de inactividad por canal ya registrado
	for _, id := range store.ChannelIDs() {
		monitorSvc.Watch(context.Background(), id)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
	monitorSvc.StopAll()
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatroomgo/internal/config"
	"chatroomgo/internal/domain"
	"chatroomgo/internal/http/http_server"
	"chatroomgo/internal/repository/inmemory"
	"chatroomgo/internal/services/room"
	"chatroomgo/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. The one authoritative room, held in memory for the process lifetime
	theRoom := domain.NewRoom(domain.NewRoomID(), domain.Now(),
		cfg.RoomParticipantCapacity, cfg.RoomMessageCapacity)
	repo := inmemory.NewRoomRepository(theRoom)
	Log.Info("Room created", zap.String("room_id", theRoom.ID()))

	// 4. Broadcast hub + room service (use cases)
	hub := ws.NewHub()
	roomSvc := room.NewRoomService(repo, hub)

	// 5. WebSocket server
	wsSrv := ws.NewWsServer(hub, roomSvc, cfg.WsMessageRate, cfg.WsMessageBurst)

	// 6. Background: periodic delivery-metrics report
	go ws.ReportMetrics(ctx, time.Minute)

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, roomSvc)
	go func() {
		<-ctx.Done()
		if err := httpServer.Dispose(); err != nil {
			Log.Error("Failed to shut down HTTP server", zap.Error(err))
		}
	}()

	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}

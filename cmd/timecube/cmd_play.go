package main

import (
	"github.com/spf13/cobra"

	"chosenoffset.com/timecube/internal/game"
	ebitenrender "chosenoffset.com/timecube/internal/render/ebiten"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the game window",
	Long: `Opens the title menu. The sandbox level is always offered, followed by
every scenario found in --dir laid out as a flat level.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	manager := game.NewManager(config, renderer, inputMgr, logger, metrics, scenarioDir)

	// Set up the window
	engine.SetWindowSize(config.Window.Width, config.Window.Height)
	engine.SetWindowTitle(config.Window.Title)
	engine.SetWindowResizable(true)
	engine.SetTickRate(config.TimeTravel.TickRate)

	logger.Info("starting game", "levels", len(manager.Levels), "tick_rate", config.TimeTravel.TickRate)
	return engine.RunGame(manager)
}

package cli

import (
	"bufio"
	"os"

	"github.com/mkuzmins/authkeeper/internal/client/api"
	"github.com/mkuzmins/authkeeper/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	user   *api.User
	reader *bufio.Reader
}

func NewApp(c *config.Config) *App {
	apiClient := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)
	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

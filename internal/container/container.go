package container

import (
	app "sprayer-backend/internal/application"
	"sprayer-backend/internal/domain/port"
	"sprayer-backend/internal/infrastructure/observability"
)

// Container собирает сервисы приложения из внешних зависимостей.
type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
}

func New(
	userRepo port.UserRepository,
	analysisRepo port.AnalysisRepository,
	remote port.RemoteClassifier,
	local port.LeafClassifier,
	sprayer port.SprayerNotifier,
	metrics *observability.Metrics,
	threshold float64,
) *Container {
	userService := app.NewUserService(userRepo)
	analysisService := app.NewAnalysisService(analysisRepo, remote, local, sprayer, metrics, threshold)

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
	}
}

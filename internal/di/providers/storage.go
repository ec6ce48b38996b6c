package providers

import (
	"github.com/samber/do/v2"

	"github.com/readloopapp/readloop-server/internal/config"
	"github.com/readloopapp/readloop-server/internal/logger"
	"github.com/readloopapp/readloop-server/internal/media/covers"
	"github.com/readloopapp/readloop-server/internal/media/images"
)

// ProvideImageStorage provides cover image storage rooted under the data path.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Cover storage initialized", "path", cfg.CoversPath())

	return storage, nil
}

// ProvideImageProcessor provides the cover image processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storage, log.Logger), nil
}

// ProvideCoverDownloader provides the remote cover downloader used by metadata import.
func ProvideCoverDownloader(i do.Injector) (*covers.Downloader, error) {
	processor := do.MustInvoke[*images.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return covers.NewDownloader(processor, log.Logger), nil
}

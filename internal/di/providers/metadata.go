package providers

import (
	"github.com/samber/do/v2"

	"github.com/readloopapp/readloop-server/internal/config"
	"github.com/readloopapp/readloop-server/internal/logger"
	"github.com/readloopapp/readloop-server/internal/media/covers"
	"github.com/readloopapp/readloop-server/internal/metadata/openlibrary"
	"github.com/readloopapp/readloop-server/internal/service"
)

// OpenLibraryClientHandle wraps the Open Library client. Client is nil
// when metadata lookups are disabled by configuration.
type OpenLibraryClientHandle struct {
	Client *openlibrary.Client
}

// ProvideOpenLibraryClient provides the Open Library API client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Metadata.Enabled {
		log.Info("Open Library metadata import disabled by configuration")
		return &OpenLibraryClientHandle{Client: nil}, nil
	}

	client := openlibrary.New(cfg.Metadata.BaseURL, log.Logger)
	log.Info("Open Library client initialized", "base_url", cfg.Metadata.BaseURL)

	return &OpenLibraryClientHandle{Client: client}, nil
}

// ProvideMetadataService provides the book metadata import service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clientHandle := do.MustInvoke[*OpenLibraryClientHandle](i)
	downloader := do.MustInvoke[*covers.Downloader](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMetadataService(storeHandle.Store, clientHandle.Client, downloader, sseHandle.Manager, log.Logger), nil
}

package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
	"github.com/oksasatya/vidstream-accounts/pkg/mailer"
)

// Deps are the collaborators shared by the account services. Cache, Index,
// Events and Logger are optional.
type Deps struct {
	Uploader AssetUploader
	Cache    IdentityCache
	Index    AccountIndexer
	Events   EventPublisher
	Logger   *logrus.Logger

	// AppName and LoginURL are rendered into notification emails.
	AppName  string
	LoginURL string
}

// syncProfile refreshes the cached identity and the search document.
// Failures are logged only; the store is the source of truth.
func (d *Deps) syncProfile(ctx context.Context, a entity.PublicAccount) {
	if d.Cache != nil {
		if err := d.Cache.Set(ctx, a); err != nil {
			helpers.LogWarn(d.Logger, "identity cache update failed", err, logrus.Fields{"account_id": a.ID})
		}
	}
	if d.Index != nil {
		if err := d.Index.Index(ctx, a); err != nil {
			helpers.LogWarn(d.Logger, "account index failed", err, logrus.Fields{"account_id": a.ID})
		}
	}
}

func (d *Deps) dropIdentity(ctx context.Context, id string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Delete(ctx, id); err != nil {
		helpers.LogWarn(d.Logger, "identity cache delete failed", err, logrus.Fields{"account_id": id})
	}
}

func (d *Deps) notify(ctx context.Context, jobType string, a *entity.Account) {
	if d.Events == nil {
		return
	}
	job := mailer.EmailJob{
		To:       a.Email,
		Template: jobType,
		Data: map[string]any{
			"app_name":  d.AppName,
			"fullname":  a.Fullname,
			"username":  a.Username,
			"email":     a.Email,
			"login_url": d.LoginURL,
		},
	}
	if err := d.Events.PublishJSON(ctx, jobType, job); err != nil {
		helpers.LogWarn(d.Logger, "publish email job failed", err, logrus.Fields{"account_id": a.ID, "job": jobType})
	}
}

// upload stores f and returns its URL; an empty URL counts as a failure.
func (d *Deps) upload(ctx context.Context, folder string, f *FileInput) (string, error) {
	if d.Uploader == nil {
		return "", errors.New("asset uploader not configured")
	}
	res, err := d.Uploader.Upload(ctx, folder, f)
	if err != nil {
		metrics.Add(metricUploadFailures, 1)
		return "", err
	}
	if strings.TrimSpace(res.URL) == "" {
		metrics.Add(metricUploadFailures, 1)
		return "", errors.New("uploader returned no url")
	}
	return res.URL, nil
}

package images

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	"github.com/wavelength/matchops/internal/db"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/repository"
	"github.com/wavelength/matchops/internal/storage"
)

const (
	maxUploadBytes  = 10 << 20
	listingCacheTTL = time.Hour
)

// Service implements image asset management: listing, uploading and
// deleting profile images and replacing a user's collage.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewImagesService creates the images service with dependencies from AppContext.
func NewImagesService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// ImageListResponse holds the user's current image URL lists.
type ImageListResponse struct {
	UserID          string   `json:"user_id"`
	ProfileImages   []string `json:"profile_images"`
	CollageImages   []string `json:"collage_images"`
	InstagramImages []string `json:"instagram_images"`
}

// List returns the user's image URLs. The listing is cached per user
// and invalidated by every write in this service.
func (s *Service) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")
	key := s.appCtx.RedisCache.KeyForUserImages(userID)

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		var resp ImageListResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return c.JSON(http.StatusOK, resp)
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}

	resp := ImageListResponse{
		UserID:          user.UserID,
		ProfileImages:   user.ProfileImages,
		CollageImages:   user.CollageImages,
		InstagramImages: user.InstagramImages,
	}
	if payload, err := json.Marshal(resp); err == nil {
		_ = s.appCtx.RedisCache.Set(ctx, key, payload, listingCacheTTL)
	}
	return c.JSON(http.StatusOK, resp)
}

// Upload stores the submitted files and appends their URLs to the
// user's profile images. Multipart field: images (repeatable).
//
// Object names follow the {user_id}-{unix_ms}-{index}-{rand}.jpeg
// pattern so re-uploads never collide.
func (s *Service) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return svcErr.InvalidArgument("expected multipart form upload")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return svcErr.InvalidArgument("no files in field 'images'")
	}

	now := time.Now().UnixMilli()
	uploaded := make([]string, 0, len(files))
	for i, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			return svcErr.InvalidArgument(err.Error())
		}

		name := fmt.Sprintf("%s-%d-%d-%s.jpeg", userID, now, i, uuid.NewString()[:8])
		url, err := s.appCtx.Storage.Upload(ctx, name, data, "image/jpeg")
		if err != nil {
			s.appCtx.Logger.Error("image upload failed", "user", userID, "object", name, "err", err)
			return svcErr.Map(err)
		}
		uploaded = append(uploaded, url)
	}

	images := append(db.StringList{}, user.ProfileImages...)
	images = append(images, uploaded...)
	if err := s.userRepo.UpdateImages(ctx, userID, "profile_images", images); err != nil {
		return svcErr.Map(err)
	}
	s.invalidateListing(c, userID)

	s.appCtx.Logger.Info("images uploaded", "user", userID, "count", len(uploaded))
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "uploaded": uploaded})
}

// DeleteRequest names the image to remove by its public URL.
type DeleteRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// Delete removes one image: the object from the bucket and the URL
// from whichever image list holds it.
func (s *Service) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	var req DeleteRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}

	column, remaining := removeURL(user, req.URL)
	if column == "" {
		return svcErr.NotFound("image url not found on user")
	}

	if path := storage.PathFromURL(s.appCtx.Cfg.Storage.Bucket, req.URL); path != "" {
		if err := s.appCtx.Storage.Delete(ctx, path); err != nil {
			s.appCtx.Logger.Error("bucket delete failed", "user", userID, "path", path, "err", err)
			return svcErr.Map(err)
		}
	}

	if err := s.userRepo.UpdateImages(ctx, userID, column, remaining); err != nil {
		return svcErr.Map(err)
	}
	s.invalidateListing(c, userID)

	s.appCtx.Logger.Info("image deleted", "user", userID, "column", column)
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "deleted": req.URL})
}

// ReplaceCollage swaps the user's collage for the uploaded one.
// Multipart field: collage. The old collage objects are deleted from
// the bucket before the new URL is stored.
func (s *Service) ReplaceCollage(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}

	fh, err := c.FormFile("collage")
	if err != nil {
		return svcErr.InvalidArgument("expected multipart field 'collage'")
	}
	data, err := readUpload(fh)
	if err != nil {
		return svcErr.InvalidArgument(err.Error())
	}

	for _, old := range user.CollageImages {
		if path := storage.PathFromURL(s.appCtx.Cfg.Storage.Bucket, old); path != "" {
			if err := s.appCtx.Storage.Delete(ctx, path); err != nil {
				s.appCtx.Logger.Warn("stale collage delete failed", "user", userID, "path", path, "err", err)
			}
		}
	}

	name := fmt.Sprintf("collage_creation/%s/collage_%s.jpg", userID, time.Now().UTC().Format("20060102_150405"))
	url, err := s.appCtx.Storage.Upload(ctx, name, data, "image/jpeg")
	if err != nil {
		return svcErr.Map(err)
	}

	if err := s.userRepo.UpdateImages(ctx, userID, "collage_images", db.StringList{url}); err != nil {
		return svcErr.Map(err)
	}
	s.invalidateListing(c, userID)

	s.appCtx.Logger.Info("collage replaced", "user", userID, "object", name)
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "collage": url})
}

func (s *Service) invalidateListing(c echo.Context, userID string) {
	key := s.appCtx.RedisCache.KeyForUserImages(userID)
	_ = s.appCtx.RedisCache.Del(c.Request().Context(), key)
}

// removeURL finds which image list holds the URL and returns the
// column name with the list minus that URL.
func removeURL(user *db.UserMetadata, url string) (string, db.StringList) {
	lists := []struct {
		column string
		urls   db.StringList
	}{
		{"profile_images", user.ProfileImages},
		{"collage_images", user.CollageImages},
		{"instagram_images", user.InstagramImages},
	}
	for _, l := range lists {
		for i, u := range l.urls {
			if u == url {
				remaining := append(db.StringList{}, l.urls[:i]...)
				remaining = append(remaining, l.urls[i+1:]...)
				return l.column, remaining
			}
		}
	}
	return "", nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, fmt.Errorf("file %s exceeds the 10MB upload limit", fh.Filename)
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".jpeg") &&
		!strings.HasSuffix(strings.ToLower(fh.Filename), ".jpg") &&
		!strings.HasSuffix(strings.ToLower(fh.Filename), ".png") {
		return nil, fmt.Errorf("file %s is not an image", fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

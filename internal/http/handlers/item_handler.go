package handlers

import (
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "campusbay/internal/log"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

const (
	maxPhotos    = 3
	maxPhotoSize = 2 << 20 // 2 MiB per file
)

type ItemHandler struct {
	Catalog  *services.CatalogService
	MediaDir string
}

// List returns the approved catalogue. Authenticated callers don't see
// their own listings.
func (h *ItemHandler) List(c *fiber.Ctx) error {
	exclude := ""
	if u := currentUser(c); u != nil {
		exclude = u.ID
	}
	items, err := h.Catalog.ListApproved(exclude)
	if err != nil {
		return fail(c, "items.list.fail", err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid item id")
	}
	item, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, "items.get.fail", err)
	}
	return c.JSON(item)
}

type searchReq struct {
	SearchTerm string `json:"searchTerm"`
}

func (h *ItemHandler) Search(c *fiber.Ctx) error {
	var req searchReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	term, ok := validate.SearchTerm(req.SearchTerm)
	if !ok {
		return badRequest(c, "Search term is required")
	}
	exclude := ""
	if u := currentUser(c); u != nil {
		exclude = u.ID
	}
	items, err := h.Catalog.Search(term, exclude)
	if err != nil {
		return fail(c, "items.search.fail", err)
	}
	return c.JSON(items)
}

// ListByUser returns all of a seller's listings regardless of status.
// Sellers may only fetch their own.
func (h *ItemHandler) ListByUser(c *fiber.Ctx) error {
	userID, ok := validate.ID(c.Params("userId"))
	if !ok {
		return badRequest(c, "invalid userId")
	}
	u := currentUser(c)
	if u.ID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized access"})
	}
	items, err := h.Catalog.ListBySeller(userID)
	if err != nil {
		return fail(c, "items.by_user.fail", err)
	}
	return c.JSON(items)
}

// savePhotos stores uploaded files under MediaDir/items and returns their
// stored filenames.
func (h *ItemHandler) savePhotos(c *fiber.Ctx, files []*multipart.FileHeader) ([]string, error) {
	dir := filepath.Join(h.MediaDir, "items")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := "items/" + uuid.NewString() + filepath.Ext(f.Filename)
		if err := c.SaveFile(f, filepath.Join(h.MediaDir, filepath.FromSlash(name))); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// photoFiles pulls and validates the multipart "photos" field.
func photoFiles(c *fiber.Ctx) ([]*multipart.FileHeader, string) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, ""
	}
	files := form.File["photos"]
	if len(files) > maxPhotos {
		return nil, "at most 3 photos allowed"
	}
	for _, f := range files {
		if f.Size > maxPhotoSize {
			return nil, "each photo must be 2MB or smaller"
		}
	}
	return files, ""
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return badRequest(c, "All fields are required")
	}
	price, ok := validate.Price(c.FormValue("price"))
	if !ok {
		return badRequest(c, "invalid price")
	}
	quantity, ok := validate.NonNegInt(c.FormValue("quantity"))
	if !ok || quantity < 1 {
		return badRequest(c, "invalid quantity")
	}
	yearsUsed, ok := validate.NonNegInt(c.FormValue("yearsUsed"))
	if !ok {
		return badRequest(c, "invalid yearsUsed")
	}
	delivery, ok := validate.DeliveryOption(c.FormValue("deliveryOption"))
	if !ok {
		return badRequest(c, "invalid deliveryOption")
	}

	files, msg := photoFiles(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	photos, err := h.savePhotos(c, files)
	if err != nil {
		return fail(c, "items.photos.save.fail", err)
	}

	item, err := h.Catalog.Create(u.ID, services.NewItemInput{
		Name:           name,
		Description:    c.FormValue("description"),
		Price:          price,
		Quantity:       quantity,
		YearsUsed:      yearsUsed,
		DeliveryOption: delivery,
		Photos:         photos,
	})
	if err != nil {
		return fail(c, "items.create.fail", err)
	}
	applog.Audit(c, "items.create", map[string]any{"item_id": item.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item added successfully. Awaiting admin approval.",
		"item":    item,
	})
}

// Update edits a pending listing. New photos replace the old set; replaced
// files are removed from disk.
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid itemId")
	}

	var in services.EditInput
	if v := c.FormValue("name"); v != "" {
		name, ok := validate.Name(v)
		if !ok {
			return badRequest(c, "invalid name")
		}
		in.Name = &name
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := c.FormValue("price"); v != "" {
		price, ok := validate.Price(v)
		if !ok {
			return badRequest(c, "invalid price")
		}
		in.Price = &price
	}
	if v := c.FormValue("quantity"); v != "" {
		qty, ok := validate.NonNegInt(v)
		if !ok {
			return badRequest(c, "invalid quantity")
		}
		in.Quantity = &qty
	}
	if v := c.FormValue("yearsUsed"); v != "" {
		years, ok := validate.NonNegInt(v)
		if !ok {
			return badRequest(c, "invalid yearsUsed")
		}
		in.YearsUsed = &years
	}
	if v := c.FormValue("deliveryOption"); v != "" {
		d, ok := validate.DeliveryOption(v)
		if !ok {
			return badRequest(c, "invalid deliveryOption")
		}
		in.DeliveryOption = &d
	}

	files, msg := photoFiles(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	if len(files) > 0 {
		photos, err := h.savePhotos(c, files)
		if err != nil {
			return fail(c, "items.photos.save.fail", err)
		}
		in.Photos = photos
	}

	item, replaced, err := h.Catalog.Edit(u.ID, itemID, in)
	if err != nil {
		return fail(c, "items.update.fail", err)
	}
	h.removePhotos(c, replaced)
	applog.Audit(c, "items.update", map[string]any{"item_id": itemID})
	return c.JSON(fiber.Map{"message": "Item updated successfully", "item": item})
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid itemId")
	}
	photos, err := h.Catalog.Delete(u.ID, itemID)
	if err != nil {
		return fail(c, "items.delete.fail", err)
	}
	h.removePhotos(c, photos)
	applog.Audit(c, "items.delete", map[string]any{"item_id": itemID})
	return c.JSON(fiber.Map{"message": "Item deleted successfully", "itemId": itemID})
}

func (h *ItemHandler) removePhotos(c *fiber.Ctx, names []string) {
	for _, name := range names {
		p := filepath.Join(h.MediaDir, filepath.FromSlash(name))
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			applog.Error(c, "items.photos.remove.fail", err, map[string]any{"photo": name})
		}
	}
}

package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	listingapp "pgfinder/internal/app/handlers/listings"
	domainauth "pgfinder/internal/domain/auth"
	domainlistings "pgfinder/internal/domain/listings"
	"pgfinder/internal/infra/storage/s3"
)

const maxImageBytes = 10 << 20

type OwnerListingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetStatus(c *gin.Context)
	UploadImage(c *gin.Context)
}

type OwnerListingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=vacant occupied"`
}

func (h OwnerListingHandler) Create(c *gin.Context) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "listing commands")
		return
	}
	var req dto.ListingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.CreateListingCommand{Details: req.Details()}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Update replaces every editable field of the listing.
func (h OwnerListingHandler) Update(c *gin.Context) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "listing commands")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	var req dto.ListingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.UpdateListingCommand{ListingID: id, Details: req.Details()}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OwnerListingHandler) Delete(c *gin.Context) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "listing commands")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	cmd := listingapp.DeleteListingCommand{ListingID: id}
	if _, err := commands.Dispatch[listingapp.DeleteListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h OwnerListingHandler) SetStatus(c *gin.Context) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "listing commands")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.SetOccupancyCommand{ListingID: id, Status: domainlistings.Occupancy(req.Status)}
	result, err := commands.Dispatch[listingapp.SetOccupancyCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadImage expects a multipart form with the file under "image".
func (h OwnerListingHandler) UploadImage(c *gin.Context) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "listing commands")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	cmd := listingapp.UploadListingImageCommand{
		ListingID:   id,
		ObjectKey:   s3.ObjectKey(id.String(), header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	result, err := commands.Dispatch[listingapp.UploadListingImageCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ OwnerListingHTTP = OwnerListingHandler{}

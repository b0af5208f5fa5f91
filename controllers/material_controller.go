package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelierworks/garment-orders-api/config"
	"github.com/atelierworks/garment-orders-api/models"
	"github.com/atelierworks/garment-orders-api/services"
	"github.com/atelierworks/garment-orders-api/utils"
)

// decorateMaterial fills the presigned image URL when the material has a
// stored image.
func decorateMaterial(material *models.Material) {
	if material.ImageS3Key == nil {
		return
	}
	designService := services.GetDesignService()
	if designService == nil {
		return
	}
	url, err := designService.ImageURL(*material.ImageS3Key)
	if err != nil {
		log.Printf("Failed to presign image URL for material %d: %v", material.ID, err)
		return
	}
	material.ImageURL = &url
}

// materialImageFromForm uploads the optional image part of a material form.
// Returns (nil, true) when no image was sent; writes the error response and
// returns ok=false on a failed upload.
func materialImageFromForm(c *gin.Context) (*string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}

	key, err := services.GetDesignService().UploadMaterialImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return nil, false
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store the material image",
			},
		})
		return nil, false
	}

	return &key, true
}

// ListMaterials handles GET /api/v1/materials - the catalog, visible to any
// authenticated user
func ListMaterials(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	db := config.GetDB()
	var materials []models.Material
	if err := db.Order("name ASC").Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list materials",
			},
		})
		return
	}

	for i := range materials {
		decorateMaterial(&materials[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
	})
}

// GetMaterial handles GET /api/v1/materials/:id
func GetMaterial(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_NOT_FOUND",
				"message": "Material not found",
			},
		})
		return
	}

	decorateMaterial(&material)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// CreateMaterial handles POST /api/v1/materials - admins add a catalog
// entry. Expects a multipart form with name, description, price_per_piece
// and an optional image.
func CreateMaterial(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "name is required",
			},
		})
		return
	}

	pricePerPiece, err := strconv.ParseInt(c.PostForm("price_per_piece"), 10, 64)
	if err != nil || pricePerPiece <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PRICE",
				"message": "price_per_piece must be a positive integer",
			},
		})
		return
	}

	imageKey, ok := materialImageFromForm(c)
	if !ok {
		return
	}

	material := models.Material{
		Name:          name,
		Description:   c.PostForm("description"),
		PricePerPiece: pricePerPiece,
		ImageS3Key:    imageKey,
	}

	db := config.GetDB()
	if err := db.Create(&material).Error; err != nil {
		if imageKey != nil {
			if delErr := services.GetDesignService().DeleteImage(*imageKey); delErr != nil {
				c.Error(delErr)
			}
		}

		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MATERIAL_EXISTS",
					"message": "A material with this name already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create material",
			},
		})
		return
	}

	decorateMaterial(&material)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    material,
	})
}

// UpdateMaterial handles PUT /api/v1/materials/:id - admins edit the
// catalog entry. Price changes never touch existing orders: those carry a
// snapshot taken at creation.
func UpdateMaterial(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_NOT_FOUND",
				"message": "Material not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if name := c.PostForm("name"); name != "" {
		updates["name"] = name
	}
	if description, ok := c.GetPostForm("description"); ok {
		updates["description"] = description
	}
	if priceRaw := c.PostForm("price_per_piece"); priceRaw != "" {
		pricePerPiece, err := strconv.ParseInt(priceRaw, 10, 64)
		if err != nil || pricePerPiece <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_PRICE",
					"message": "price_per_piece must be a positive integer",
				},
			})
			return
		}
		updates["price_per_piece"] = pricePerPiece
	}

	imageKey, ok := materialImageFromForm(c)
	if !ok {
		return
	}
	previousKey := material.ImageS3Key
	if imageKey != nil {
		updates["image_s3_key"] = *imageKey
	}

	if len(updates) > 0 {
		if err := db.Model(&material).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "MATERIAL_EXISTS",
						"message": "A material with this name already exists",
					},
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update material",
				},
			})
			return
		}
	}

	// A replaced image leaves its predecessor unreferenced
	if imageKey != nil && previousKey != nil {
		if err := services.GetDesignService().DeleteImage(*previousKey); err != nil {
			c.Error(err)
		}
	}

	if err := db.First(&material, material.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load material",
			},
		})
		return
	}

	decorateMaterial(&material)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// DeleteMaterial handles DELETE /api/v1/materials/:id - admins retire a
// catalog entry. Materials referenced by orders cannot be removed; existing
// orders keep their snapshot but the foreign key must stay resolvable.
func DeleteMaterial(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.First(&material, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_NOT_FOUND",
				"message": "Material not found",
			},
		})
		return
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Where("material_id = ?", material.ID).Count(&orderCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check material usage",
			},
		})
		return
	}
	if orderCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_IN_USE",
				"message": "Material is referenced by existing orders",
			},
		})
		return
	}

	if err := db.Delete(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete material",
			},
		})
		return
	}

	if material.ImageS3Key != nil {
		if err := services.GetDesignService().DeleteImage(*material.ImageS3Key); err != nil {
			c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Material deleted",
	})
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"datasourceapi/pkg/dberr"
	"datasourceapi/pkg/logger"
	"datasourceapi/services"
	"datasourceapi/services/dto"
	"datasourceapi/services/secrets"
	"datasourceapi/utils"

	"github.com/gin-gonic/gin"
)

// DatabaseController handles database connection registry operations.
type DatabaseController struct {
	updateService services.DatabaseUpdateService
	testService   services.ConnectionTestService
}

// NewDatabaseController creates a new database controller instance.
func NewDatabaseController() *DatabaseController {
	return &DatabaseController{
		updateService: services.NewDatabaseUpdateService(),
		testService:   services.NewConnectionTestService(),
	}
}

// UpdateDatabase applies a sparse changeset to a registered database connection
// @Summary Update a database connection
// @Description Updates the connection record, its SSH tunnel credential and all dependent permissions in one transaction
// @Tags Databases
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param changeset body dto.DatabaseUpdate true "Sparse field overrides"
// @Success 200 {object} map[string]interface{} "Updated database record"
// @Failure 400 {object} map[string]interface{} "Bad request or unreachable database"
// @Failure 404 {object} map[string]interface{} "Database not found"
// @Failure 422 {object} map[string]interface{} "Validation or tunnel failure"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/registry/databases/{id} [put]
func (ctrl *DatabaseController) UpdateDatabase(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		logger.Errorf("Invalid database ID parameter: %s, error: %v", idParam, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid database ID",
			"message": "Database ID must be a positive integer",
		})
		return
	}

	var payload dto.DatabaseUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Errorf("Invalid update payload for database ID %d: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid payload",
			"message": err.Error(),
		})
		return
	}

	record, err := ctrl.updateService.Update(c.Request.Context(), uint(id), payload)
	if err != nil {
		respondUpdateError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              record.ID,
		"database_name":   record.DatabaseName,
		"connection_uri":  record.ConnectionURI,
		"driver":          record.Driver,
		"encrypted_extra": secrets.MaskEncryptedExtra(record.EncryptedExtra),
	})
}

// TestDatabaseConnection probes a registered connection
// @Summary Test a database connection
// @Description Opens the stored connection (through its SSH tunnel if any) and lists the schemas it exposes
// @Tags Databases
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {object} map[string]interface{} "Connection test result"
// @Failure 400 {object} map[string]interface{} "Database unreachable"
// @Failure 404 {object} map[string]interface{} "Database not found"
// @Router /api/registry/databases/test/{id} [post]
func (ctrl *DatabaseController) TestDatabaseConnection(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid database ID",
			"message": "Database ID must be a positive integer",
		})
		return
	}

	schemas, err := ctrl.testService.TestConnection(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, dberr.ErrDatabaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		utils.ErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"schemas": schemas,
	})
}

// respondUpdateError maps the dberr taxonomy onto HTTP statuses. Tunnel
// domain errors keep their original message for precise UI feedback.
func respondUpdateError(c *gin.Context, id uint64, err error) {
	logger.Errorf("Database update failed for ID %d: %v", id, err)

	var invalid *dberr.InvalidError
	switch {
	case errors.Is(err, dberr.ErrDatabaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "Validation failed",
			"messages": invalid.Failures,
		})
	case errors.Is(err, dberr.ErrSSHTunnelingDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case dberr.IsTunnelError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, dberr.ErrDatabaseConnectionFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": dberr.ErrDatabaseUpdateFailed.Error()})
	}
}

// RegisterDatabaseRoutes registers database registry routes
func RegisterDatabaseRoutes(rg *gin.RouterGroup) {
	databaseController := NewDatabaseController()

	databases := rg.Group("/databases")
	{
		databases.PUT("/:id", databaseController.UpdateDatabase)
		databases.POST("/test/:id", databaseController.TestDatabaseConnection)
	}
}

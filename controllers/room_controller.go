package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

type createRoomRequest struct {
	RoomNumber string            `json:"room_number" binding:"required"`
	RoomType   models.RoomType   `json:"room_type" binding:"omitempty,roomtype"`
	Status     models.RoomStatus `json:"status" binding:"omitempty,roomstatus"`
	Floor      string            `json:"floor"`
	Area       float64           `json:"area" binding:"gte=0"`
	Capacity   int               `json:"capacity" binding:"gte=0"`
	Memo       string            `json:"memo"`
	PositionX  float64           `json:"position_x"`
	PositionY  float64           `json:"position_y"`
	Width      float64           `json:"width" binding:"gte=0"`
	Height     float64           `json:"height" binding:"gte=0"`
}

// GetRooms (GET /api/rooms)
func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.RoomSvc.List(services.RoomFilter{
		Status:   models.RoomStatus(c.Query("status")),
		RoomType: models.RoomType(c.Query("room_type")),
		Floor:    c.Query("floor"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	room, err := ctrl.RoomSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// CreateRoom (POST /api/rooms)
func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room := models.Room{
		RoomNumber: req.RoomNumber,
		RoomType:   req.RoomType,
		Status:     req.Status,
		Floor:      req.Floor,
		Area:       req.Area,
		Capacity:   req.Capacity,
		Memo:       req.Memo,
		PositionX:  req.PositionX,
		PositionY:  req.PositionY,
		Width:      req.Width,
		Height:     req.Height,
	}
	if err := ctrl.RoomSvc.Create(&room); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.RoomInput
	if !bindJSON(c, &in) {
		return
	}
	room, err := ctrl.RoomSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// UpdatePosition (PATCH /api/rooms/:id/position) is called when a card is dropped.
func (ctrl *RoomController) UpdatePosition(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var p services.RoomPosition
	p.ID = id
	if !bindJSON(c, &p) {
		return
	}
	room, err := ctrl.RoomSvc.UpdatePosition(id, p)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// SaveLayout (PUT /api/rooms/layout)
func (ctrl *RoomController) SaveLayout(c *gin.Context) {
	var req struct {
		Rooms []services.RoomPosition `json:"rooms" binding:"required,dive"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.RoomSvc.SaveLayout(req.Rooms); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": len(req.Rooms)})
}

func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.RoomSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/openvehiclelab/evedb/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type trajectoryAPI struct {
	tripService TripService
	log         *zap.Logger
}

func New(tripService TripService, log *zap.Logger) *trajectoryAPI {
	return &trajectoryAPI{
		tripService: tripService,
		log:         log,
	}
}

func (api *trajectoryAPI) Routes(group *helper.RouteGroup) {
	group.GET("/trajectories", api.listTrajectories)
	group.GET("/trajectories/:id", api.trajectoryDetail)
	group.GET("/trajectories/:id/geometry", api.trajectoryGeometry)
	group.GET("/vehicles", api.listVehicles)
}

func (api *trajectoryAPI) listTrajectories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	trajectories, err := api.tripService.ListTrajectories(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": newTrajectoryResponses(trajectories)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *trajectoryAPI) trajectoryDetail(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	trajID, ok := api.trajectoryID(w, r, p)
	if !ok {
		return
	}

	trajectory, err := api.tripService.TrajectoryDetail(r.Context(), trajID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": newTrajectoryResponse(trajectory)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *trajectoryAPI) trajectoryGeometry(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	trajID, ok := api.trajectoryID(w, r, p)
	if !ok {
		return
	}

	geometry, points, err := api.tripService.TrajectoryGeometry(r.Context(), trajID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": geometryResponse{TrajID: trajID, Geometry: geometry, Points: points}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *trajectoryAPI) listVehicles(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	vehicles, err := api.tripService.ListVehicles(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": newVehicleResponses(vehicles)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// trajectoryID parses and validates the :id path parameter.
func (api *trajectoryAPI) trajectoryID(w http.ResponseWriter, r *http.Request, p httprouter.Params) (int64, bool) {
	var request trajectoryRequest
	id, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("id is required and must be a valid integer"))
		return 0, false
	}
	request.TrajID = id

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return 0, false
	}
	return id, true
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var out []error
	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			out = append(out, errors.New(e.Translate(trans)))
		}
	} else {
		out = append(out, err)
	}
	return out
}

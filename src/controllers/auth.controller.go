package controllers

import (
	"crs/src/db"
	"crs/src/models"
	"crs/src/types"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	db := db.GetDb()
	var user models.User
	if err = db.
		Model(&models.User{}).
		Where(&models.User{Email: body.Email}).
		First(&user).
		Error; err != nil {
		log.Printf("error retrieving user [%s]: %s\n", body.Email, err.Error())
		return nil, http.StatusNotFound, errors.New("no account is associated with this email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}

	signed, err := signToken(&user)
	if err != nil {
		log.Printf("Error signing token for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return signed, http.StatusOK, nil
}

func AuthRegister(ctx *gin.Context) (userId *uint, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	user := models.User{
		Name:     body.Name,
		Email:    body.Email,
		Password: string(hashed),
		Phone:    body.Phone,
		City:     body.City,
		State:    body.State,
		Country:  body.Country,
		Pincode:  body.Pincode,
	}
	db := db.GetDb()
	if err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.User{}).
			Where(&models.User{Email: body.Email}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("an account with this email already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		log.Printf("[AuthRegister] error: %s\n", err.Error())
		return nil, http.StatusBadRequest, err
	}
	return &user.ID, http.StatusOK, nil
}

func signToken(user *models.User) (*string, error) {
	claims := &types.Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(jwtKey)
	if err != nil {
		return nil, err
	}
	return &signed, nil
}

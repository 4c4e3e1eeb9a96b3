package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health responde el estado de las dos dependencias que el POS no puede
// operar sin: postgres (datos) y redis (cache de mesas + colas). Devuelve
// 503 si alguna no responde, para que el balanceador saque la instancia.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgres := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "sin conexion"
		}

		redisEstado := "ok"
		if rdb.Ping(ctx).Err() != nil {
			redisEstado = "sin conexion"
		}

		status := http.StatusOK
		if postgres != "ok" || redisEstado != "ok" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"servicio": "mentapos",
			"postgres": postgres,
			"redis":    redisEstado,
		})
	}
}

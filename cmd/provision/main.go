// Command provision bootstraps tenants from the terminal: a new restaurante
// with its first sucursal, mesas, admin user and default payment methods, or
// extra sucursales/mesas for an existing tenant.
package main

import (
	"fmt"
	"os"
	"time"

	"mentapos/internal/config"
	"mentapos/internal/infra"
	"mentapos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var metodosPagoDefault = []string{"efectivo", "tarjeta", "qr", "pendiente_caja"}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	root := &cobra.Command{
		Use:          "provision",
		Short:        "Herramienta de alta de restaurantes, sucursales y mesas",
		SilenceUsage: true,
	}
	root.AddCommand(initCmd(), addSucursalCmd(), addMesasCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func abrirDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return infra.NewDatabase(cfg.DatabaseURL)
}

func initCmd() *cobra.Command {
	var (
		nombreSucursal string
		ciudad         string
		numMesas       int
		adminUser      string
		adminPass      string
		adminNombre    string
	)
	cmd := &cobra.Command{
		Use:   "init <nombre-restaurante>",
		Short: "Crea un restaurante con sucursal, mesas, admin y metodos de pago",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrirDB()
			if err != nil {
				return err
			}
			return db.Transaction(func(tx *gorm.DB) error {
				restaurante := &model.Restaurante{Nombre: args[0], Activo: true}
				if err := tx.Create(restaurante).Error; err != nil {
					return fmt.Errorf("crear restaurante: %w", err)
				}

				sucursal := &model.Sucursal{
					IDRestaurante: restaurante.ID,
					Nombre:        nombreSucursal,
					Ciudad:        ciudad,
					Activo:        true,
				}
				if err := tx.Create(sucursal).Error; err != nil {
					return fmt.Errorf("crear sucursal: %w", err)
				}

				if err := crearMesas(tx, restaurante.ID, sucursal.ID, 1, numMesas); err != nil {
					return err
				}

				for _, descripcion := range metodosPagoDefault {
					mp := &model.MetodoPago{
						IDRestaurante: restaurante.ID,
						Descripcion:   descripcion,
						Activo:        true,
					}
					if err := tx.Create(mp).Error; err != nil {
						return fmt.Errorf("crear metodo de pago %q: %w", descripcion, err)
					}
				}

				hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), 12)
				if err != nil {
					return err
				}
				admin := &model.Vendedor{
					IDRestaurante: restaurante.ID,
					IDSucursal:    sucursal.ID,
					Nombre:        adminNombre,
					Username:      adminUser,
					PasswordHash:  string(hash),
					Rol:           "admin",
					Activo:        true,
				}
				if err := tx.Create(admin).Error; err != nil {
					return fmt.Errorf("crear admin: %w", err)
				}

				log.Info().
					Str("restaurante", restaurante.ID.String()).
					Str("sucursal", sucursal.ID.String()).
					Int("mesas", numMesas).
					Str("admin", adminUser).
					Msg("restaurante provisionado")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&nombreSucursal, "sucursal", "Principal", "nombre de la primera sucursal")
	cmd.Flags().StringVar(&ciudad, "ciudad", "", "ciudad de la sucursal")
	cmd.Flags().IntVar(&numMesas, "mesas", 10, "cantidad de mesas a crear")
	cmd.Flags().StringVar(&adminUser, "admin-user", "admin", "username del administrador")
	cmd.Flags().StringVar(&adminPass, "admin-pass", "", "password del administrador (requerido)")
	cmd.Flags().StringVar(&adminNombre, "admin-nombre", "Administrador", "nombre del administrador")
	_ = cmd.MarkFlagRequired("admin-pass")
	return cmd
}

func addSucursalCmd() *cobra.Command {
	var (
		ciudad   string
		numMesas int
	)
	cmd := &cobra.Command{
		Use:   "add-sucursal <id-restaurante> <nombre>",
		Short: "Agrega una sucursal (con sus mesas) a un restaurante existente",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurante, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("id-restaurante invalido: %w", err)
			}
			db, err := abrirDB()
			if err != nil {
				return err
			}
			return db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("id = ?", restaurante).First(&model.Restaurante{}).Error; err != nil {
					return fmt.Errorf("restaurante no encontrado: %w", err)
				}
				sucursal := &model.Sucursal{
					IDRestaurante: restaurante,
					Nombre:        args[1],
					Ciudad:        ciudad,
					Activo:        true,
				}
				if err := tx.Create(sucursal).Error; err != nil {
					return fmt.Errorf("crear sucursal: %w", err)
				}
				if err := crearMesas(tx, restaurante, sucursal.ID, 1, numMesas); err != nil {
					return err
				}
				log.Info().
					Str("sucursal", sucursal.ID.String()).
					Int("mesas", numMesas).
					Msg("sucursal agregada")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ciudad, "ciudad", "", "ciudad de la sucursal")
	cmd.Flags().IntVar(&numMesas, "mesas", 10, "cantidad de mesas a crear")
	return cmd
}

func addMesasCmd() *cobra.Command {
	var (
		desde     int
		cantidad  int
		capacidad int
	)
	cmd := &cobra.Command{
		Use:   "add-mesas <id-restaurante> <id-sucursal>",
		Short: "Agrega mesas numeradas a una sucursal existente",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurante, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("id-restaurante invalido: %w", err)
			}
			sucursal, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("id-sucursal invalido: %w", err)
			}
			db, err := abrirDB()
			if err != nil {
				return err
			}
			return db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("id = ? AND id_restaurante = ?", sucursal, restaurante).
					First(&model.Sucursal{}).Error; err != nil {
					return fmt.Errorf("sucursal no encontrada: %w", err)
				}
				if err := crearMesasCapacidad(tx, restaurante, sucursal, desde, cantidad, capacidad); err != nil {
					return err
				}
				log.Info().Int("desde", desde).Int("cantidad", cantidad).Msg("mesas agregadas")
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&desde, "desde", 1, "primer numero de mesa")
	cmd.Flags().IntVar(&cantidad, "cantidad", 1, "cantidad de mesas")
	cmd.Flags().IntVar(&capacidad, "capacidad", 4, "capacidad por mesa")
	return cmd
}

func crearMesas(tx *gorm.DB, restaurante, sucursal uuid.UUID, desde, cantidad int) error {
	return crearMesasCapacidad(tx, restaurante, sucursal, desde, cantidad, 4)
}

func crearMesasCapacidad(tx *gorm.DB, restaurante, sucursal uuid.UUID, desde, cantidad, capacidad int) error {
	for i := 0; i < cantidad; i++ {
		mesa := &model.Mesa{
			IDRestaurante:  restaurante,
			IDSucursal:     sucursal,
			Numero:         desde + i,
			Capacidad:      capacidad,
			Estado:         model.MesaLibre,
			TotalAcumulado: decimal.Zero,
		}
		if err := tx.Create(mesa).Error; err != nil {
			return fmt.Errorf("crear mesa %d: %w", desde+i, err)
		}
	}
	return nil
}

package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type movie struct {
	title       string
	genre       string
	description string
}

// catalog is a small Spanish-language movie list. Genres are "/"-delimited.
var catalog = []movie{
	{"El laberinto del fauno", "Fantasía/Drama", "Una niña escapa de la posguerra española hacia un mundo mágico lleno de criaturas antiguas"},
	{"Mad Max: Furia en el camino", "Acción/Ciencia ficción", "Persecución brutal por un desierto postapocalíptico en busca de libertad"},
	{"Coco", "Animación/Familia", "Un niño viaja a la tierra de los muertos para descubrir la historia musical de su familia"},
	{"El secreto de sus ojos", "Drama/Suspenso", "Un investigador retirado revive un crimen sin resolver que marcó su vida"},
	{"Relatos salvajes", "Comedia/Drama", "Seis historias de venganza donde personas comunes pierden el control"},
	{"Interestelar", "Ciencia ficción/Drama", "Astronautas atraviesan un agujero de gusano para encontrar un nuevo hogar para la humanidad"},
	{"Roma", "Drama", "La vida de una trabajadora doméstica en la ciudad de México de los años setenta"},
	{"Toy Story", "Animación/Comedia/Familia", "Los juguetes de un niño cobran vida cuando nadie los observa"},
	{"El orfanato", "Terror/Suspenso", "Una mujer regresa al orfanato de su infancia y su hijo desaparece misteriosamente"},
	{"Matrix", "Acción/Ciencia ficción", "Un programador descubre que la realidad es una simulación controlada por máquinas"},
	{"Amores perros", "Drama/Suspenso", "Un accidente de tráfico conecta tres historias de amor y pérdida en la ciudad"},
	{"Parásitos", "Drama/Suspenso/Comedia", "Una familia pobre se infiltra en la casa de una familia rica con consecuencias inesperadas"},
	{"El conjuro", "Terror", "Investigadores paranormales ayudan a una familia aterrorizada por una presencia oscura"},
	{"Gladiador", "Acción/Drama", "Un general romano traicionado busca venganza como gladiador en la arena"},
	{"Intensa-Mente", "Animación/Familia/Comedia", "Las emociones de una niña intentan guiarla durante una mudanza difícil"},
	{"Origen", "Acción/Ciencia ficción/Suspenso", "Un ladrón roba secretos entrando en los sueños de sus víctimas"},
	{"Nueve reinas", "Suspenso/Comedia", "Dos estafadores planean vender sellos falsificados en un solo día"},
	{"La vida es bella", "Comedia/Drama", "Un padre protege a su hijo con humor durante el horror de un campo de concentración"},
	{"Alien", "Terror/Ciencia ficción", "La tripulación de una nave espacial es cazada por una criatura letal"},
	{"El Padrino", "Drama/Crimen", "El patriarca de una familia mafiosa transfiere el control de su imperio a su hijo"},
	{"Pulp Fiction", "Crimen/Comedia", "Historias entrelazadas de criminales en Los Ángeles con humor negro"},
	{"Up", "Animación/Familia/Aventura", "Un anciano ata globos a su casa para viajar a Sudamérica con un niño explorador"},
	{"Indiana Jones", "Aventura/Acción", "Un arqueólogo busca el arca perdida antes que sus enemigos"},
	{"Tiburón", "Suspenso/Terror", "Un enorme tiburón aterroriza a los bañistas de una playa turística"},
	{"Volver", "Drama/Comedia", "Tres generaciones de mujeres enfrentan secretos familiares y el regreso de una madre"},
	{"Blade Runner", "Ciencia ficción/Crimen", "Un cazador persigue replicantes fugitivos en una ciudad futurista"},
	{"Shrek", "Animación/Comedia/Aventura", "Un ogro rescata a una princesa para recuperar la tranquilidad de su pantano"},
	{"El resplandor", "Terror/Drama", "Un escritor cuida un hotel aislado durante el invierno y enloquece lentamente"},
	{"Forrest Gump", "Drama/Comedia", "Un hombre sencillo participa sin querer en los grandes eventos de su época"},
	{"Jurassic Park", "Aventura/Ciencia ficción", "Dinosaurios clonados escapan en un parque temático en una isla"},
}

func Setup(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	logger = logger.Named("seed")
	rng := rand.New(rand.NewPCG(42, 0))

	// Truncate existing data before insert
	logger.Info("truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE ratings, movies, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	const users = 20

	logger.Info("inserting users", zap.Int("count", users))
	if err := seedUsers(ctx, pool, rng, users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	logger.Info("inserting movies", zap.Int("count", len(catalog)))
	if err := seedMovies(ctx, pool); err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}

	logger.Info("inserting ratings")
	if err := seedRatings(ctx, pool, rng, users, len(catalog), 200); err != nil {
		return fmt.Errorf("seed ratings: %w", err)
	}

	logger.Info("seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	countries := []string{"AR", "MX", "ES", "CL", "CO", "PE", "UY"}

	rows := []string{}
	args := []any{}

	for i := range n {
		username := fmt.Sprintf("usuario%02d", i+1)
		attributes := map[string]any{
			"country": countries[rng.IntN(len(countries))],
			"age":     rng.IntN(48) + 18,
		}
		createdAt := time.Now().AddDate(0, 0, -rng.IntN(365))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, username, attributes, createdAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO users (username, attributes, created_at) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedMovies(ctx context.Context, pool *pgxpool.Pool) error {
	rows := []string{}
	args := []any{}

	for _, m := range catalog {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, m.title, m.genre, m.description)
	}

	query := "INSERT INTO movies (title, genre, description) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

// seedRatings skews both users and movies towards low ids so that a few
// users have long histories and a few movies are popular.
func seedRatings(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, users, movies, n int) error {
	seen := make(map[[2]int64]bool)

	rows := []string{}
	args := []any{}

	for range n {
		userID := skewedID(rng, users, 1.5)
		movieID := skewedID(rng, movies, 1.3)

		key := [2]int64{userID, movieID}
		if seen[key] {
			continue
		}
		seen[key] = true

		rating := float64(rng.IntN(5) + 1)
		ratedAt := time.Now().AddDate(0, 0, -rng.IntN(180))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, userID, movieID, rating, ratedAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO ratings (user_id, movie_id, rating, rated_at) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func skewedID(rng *rand.Rand, n int, exp float64) int64 {
	id := int64(math.Ceil(math.Pow(rng.Float64(), exp) * float64(n)))
	return max(1, min(id, int64(n)))
}

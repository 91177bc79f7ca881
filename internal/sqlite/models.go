package sqlite

import "time"

type movieModel struct {
	ID            int    `gorm:"primaryKey;autoIncrement:false"`
	Title         string `gorm:"not null"`
	YearOfRelease int    `gorm:"column:year_of_release;not null;index:idx_movies_year_of_release"`
	RunningTime   int    `gorm:"column:running_time;not null;default:0"`
}

func (movieModel) TableName() string { return "movies" }

type genreModel struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null;uniqueIndex"`
}

func (genreModel) TableName() string { return "genres" }

type movieGenreModel struct {
	MovieID int `gorm:"primaryKey;autoIncrement:false"`
	GenreID int `gorm:"primaryKey;autoIncrement:false;index:idx_movie_genres_genre_id"`

	Movie movieModel `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	Genre genreModel `gorm:"foreignKey:GenreID;constraint:OnDelete:CASCADE"`
}

func (movieGenreModel) TableName() string { return "movie_genres" }

type userModel struct {
	ID int `gorm:"primaryKey;autoIncrement:false"`
}

func (userModel) TableName() string { return "users" }

type userRatingModel struct {
	UserID    int       `gorm:"primaryKey;autoIncrement:false"`
	MovieID   int       `gorm:"primaryKey;autoIncrement:false;index:idx_user_ratings_movie_id"`
	Rating    int       `gorm:"not null;check:rating >= 0 AND rating <= 5"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	User  userModel  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Movie movieModel `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (userRatingModel) TableName() string { return "user_ratings" }

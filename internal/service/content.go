package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
)

var cityFacts = []string{
	"Жуковский известен как центр авиации и космонавтики.",
	"Здесь находится Центральный аэрогидродинамический институт.",
	"Город носит имя известного авиаконструктора Николая Жуковского.",
	"Жуковский был основан в 1947 году как рабочий поселок.",
	"В городе ежегодно проводится международный авиационно-космический салон МАКС.",
	"Жуковский имеет одно из крупнейших авиационных кладбищ в России.",
	"В городе расположен крупнейший в Европе аэродром для испытательных полетов.",
	"Жуковский является важным научным центром в области аэродинамики.",
	"Город активно развивается в сфере высоких технологий и инноваций.",
	"Жуковский окружен красивыми лесами и природными зонами для отдыха.",
}

var cityEvents = []string{
	"Авиационный салон МАКС - 20 июля 2024",
	"Фестиваль науки - 15 августа 2024",
	"Концерт в парке - 25 августа 2024",
}

type leafDetail struct {
	imageRef string
	caption  string
}

var leafDetails = map[string]leafDetail{
	"health":         {"https://i.postimg.cc/G20tQ8Wp/image.jpg", "Зона «Здоровый образ жизни»"},
	"business":       {"https://i.postimg.cc/nzkshVWc/image.jpg", "Зона «Деловой ритм жизни»"},
	"infrastructure": {"https://i.postimg.cc/mg5JKQ2T/image.jpg", "Зона «Инфраструктура и транспорт»"},
	"science":        {"https://i.postimg.cc/wTxrvW16/image.jpg", "Зона «Наука»"},
	"leisure":        {"https://i.postimg.cc/9XbxvGJs/image.jpg", "Зона «Досуг»"},
	"youth":          {"https://i.postimg.cc/15YvzyxH/image.jpg", "Зона «Молодежь и дети»"},
	"coffee_1": {
		"https://i.postimg.cc/HxMv7RgN/image.jpg",
		"Уютная кофейня рядом с центральным сквером 🌳\n\n📍 ул. Маяковского, 9",
	},
	"restaurant_1": {
		"https://i.postimg.cc/gjShcc7b/image.jpg",
		"Современное кафе прямо на набережной 🌊\n\n📍 ул. Федотова",
	},
	"nature": {
		"https://i.postimg.cc/qBhvvQXV/image.jpg",
		"🍃 Многовековые сосны и современное благоустройство: обновленный центральный парк города понравится каждому гостю.\n\n📍 ул. Комсомольская, 9",
	},
	"architecture": {
		"https://i.postimg.cc/d06LG1Db/image.jpg",
		"🏛️ Здание ДК, инженерный комплекс ЦАГИ, бульвары, жилые кварталы – гуляя по «старому» Жуковскому и рассматривая детали, вы станете знатоком особенностей советского конструктивистского стиля.\n\n📍 Пересечение улиц Фрунзе и Маяковского",
	},
	"history": {
		"https://i.postimg.cc/QtMVm3TH/image.jpg",
		"⛲️ От великолепной усадьбы Быково до наших дней сохранились дворец начала 19 века, пейзажный парк с прудами, а также потрясающая Владимирская церковь в неоготическом стиле.\n\n📍 Раменский г.о, пос. Быково",
	},
}

// WeatherSource returns a formatted weather line; it never fails
type WeatherSource interface {
	Current(ctx context.Context) string
}

// ContentService serves static and dynamic content for menu leaves.
// It holds no mutable state and is safe for concurrent use.
type ContentService struct {
	weather WeatherSource
	intn    func(n int) int
}

// NewContentService creates a new content service
func NewContentService(weather WeatherSource) *ContentService {
	return &ContentService{weather: weather, intn: rand.Intn}
}

// RandomFact picks a fact about the city uniformly
func (s *ContentService) RandomFact() string {
	fact := cityFacts[s.intn(len(cityFacts))]
	return fmt.Sprintf("Интересный факт о Жуковском:\n\n%s", fact)
}

// CurrentWeather reports the weather or a fallback line
func (s *ContentService) CurrentWeather(ctx context.Context) string {
	return fmt.Sprintf("Текущая погода в Жуковском:\n\n%s", s.weather.Current(ctx))
}

// UpcomingEvents lists the announced city events
func (s *ContentService) UpcomingEvents() string {
	return fmt.Sprintf("Предстоящие события в Жуковском:\n\n%s", strings.Join(cityEvents, "\n"))
}

// LeafDetail looks up the photo and caption for an inline leaf
func (s *ContentService) LeafDetail(leafID string) (imageRef, caption string, ok bool) {
	detail, ok := leafDetails[leafID]
	if !ok {
		return "", "", false
	}
	return detail.imageRef, detail.caption, true
}

package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type identities struct {
	faker *gofakeit.Faker
	rnd   *rand.Rand
	smp   *sampler
}

func newIdentities(seed uint64, rnd *rand.Rand, smp *sampler) *identities {
	return &identities{faker: gofakeit.New(seed), rnd: rnd, smp: smp}
}

func (i *identities) customer() *models.Customer {
	return &models.Customer{
		Name:     i.faker.Name(),
		Email:    i.faker.Email(),
		Phone:    i.faker.Phone(),
		Document: i.cpf(),
	}
}

func (i *identities) merchant() *models.Merchant {
	return &models.Merchant{
		Name:     i.faker.Company(),
		Category: i.smp.oneOf(i.smp.cfg.Categories),
		Document: i.cnpj(),
	}
}

func (i *identities) digits(n int) []int {
	d := make([]int, n)
	for k := range d {
		d[k] = i.rnd.IntN(10)
	}

	return d
}

func (i *identities) cpf() string {
	return formatCPF(i.digits(9))
}

// cnpj generates a head office number: eight random digits and branch 0001.
func (i *identities) cnpj() string {
	return formatCNPJ(append(i.digits(8), 0, 0, 0, 1))
}

// formatCPF appends both check digits to a nine digit base and renders
// ddd.ddd.ddd-dd.
func formatCPF(base []int) string {
	d := append([]int(nil), base...)
	d = append(d, cpfCheckDigit(d))
	d = append(d, cpfCheckDigit(d))

	return fmt.Sprintf("%d%d%d.%d%d%d.%d%d%d-%d%d", toAny(d)...)
}

func cpfCheckDigit(d []int) int {
	sum := 0
	weight := len(d) + 1
	for _, v := range d {
		sum += v * weight
		weight--
	}

	r := sum * 10 % 11
	if r == 10 {
		return 0
	}

	return r
}

// formatCNPJ appends both check digits to a twelve digit base and renders
// dd.ddd.ddd/dddd-dd.
func formatCNPJ(base []int) string {
	d := append([]int(nil), base...)
	d = append(d, cnpjCheckDigit(d))
	d = append(d, cnpjCheckDigit(d))

	return fmt.Sprintf("%d%d.%d%d%d.%d%d%d/%d%d%d%d-%d%d", toAny(d)...)
}

func cnpjCheckDigit(d []int) int {
	sum := 0
	weight := len(d) - 7
	for _, v := range d {
		sum += v * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}

	r := sum % 11
	if r < 2 {
		return 0
	}

	return 11 - r
}

func toAny(d []int) []any {
	res := make([]any, len(d))
	for k, v := range d {
		res[k] = v
	}

	return res
}
